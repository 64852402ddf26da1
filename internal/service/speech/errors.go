package speech

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyAudio            = errors.New("audio file is empty or not valid")
	ErrInvalidWAV            = errors.New("invalid WAV file")
	ErrRecognizerUnavailable = errors.New("speech recognizer unavailable")
	ErrSynthesisFailed       = errors.New("speech synthesis failed")
	ErrTimeout               = errors.New("speech engine timed out")
)

// Audio constraints the recognizer path accepts.
const (
	RequiredChannels   = 1
	RequiredSampleBits = 16
	RequiredSampleRate = 16000
)

// Constraint names carried by UnsupportedAudioFormatError.
const (
	ConstraintChannels    = "channels"
	ConstraintSampleWidth = "sample_width"
	ConstraintSampleRate  = "sample_rate"
)

// UnsupportedAudioFormatError names the first format constraint an upload violated.
type UnsupportedAudioFormatError struct {
	Constraint string
	Got        int
	Want       int
}

func (e *UnsupportedAudioFormatError) Error() string {
	switch e.Constraint {
	case ConstraintChannels:
		return "Audio file must be mono (1 channel)."
	case ConstraintSampleWidth:
		return "Audio file must be 16-bit PCM."
	case ConstraintSampleRate:
		return "Audio file must have a sample rate of 16,000 Hz."
	default:
		return fmt.Sprintf("unsupported audio format: %s=%d, want %d", e.Constraint, e.Got, e.Want)
	}
}
