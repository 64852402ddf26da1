package ai

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrEmptyUpstreamResponse = errors.New("AI returned an empty response")
	ErrUpstreamTimeout       = errors.New("chat provider timed out")
)

// UpstreamChatError reports a failed chat completion call. StatusCode is
// the provider's HTTP status when one was received, 0 otherwise.
type UpstreamChatError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *UpstreamChatError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("chat provider error (status %d): %s", e.StatusCode, e.Detail)
	}
	return "chat provider error: " + e.Detail
}

func (e *UpstreamChatError) Unwrap() error {
	return e.Err
}
