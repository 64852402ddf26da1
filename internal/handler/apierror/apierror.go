// Package apierror maps service errors onto HTTP responses.
package apierror

import (
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/museumai/kiosk/backend/internal/logging"
	"github.com/museumai/kiosk/backend/internal/model/persona"
	"github.com/museumai/kiosk/backend/internal/service/ai"
	chatservice "github.com/museumai/kiosk/backend/internal/service/chat"
	speechservice "github.com/museumai/kiosk/backend/internal/service/speech"
	"github.com/museumai/kiosk/backend/pkg/utils"
)

// Messages shared with handlers.
const (
	MsgInvalidInput   = "Invalid input. 'user_input' and 'personality' are required."
	MsgProcessing     = "An error occurred while processing the request."
	MsgAudioFailed    = "Failed to process audio file."
	MsgNoAudioUpload  = "No audio file uploaded."
	msgEmptyReply     = "AI returned an empty response."
	msgUpstreamChat   = "Error with AI response."
	msgTimeout        = "Upstream service timed out."
	msgEmptyAudio     = "Audio file is empty or not valid."
	msgInvalidWAV     = "Invalid WAV file."
	msgNoRecognizer   = "Speech recognizer unavailable."
	msgHistoryFailure = "Conversation history unavailable."
)

// Problem is the HTTP rendering of an error.
type Problem struct {
	Status  int
	Message string
	Details string
}

// Classify maps err onto a Problem. fallback is the message used for
// errors with no specific mapping.
func Classify(err error, fallback string) Problem {
	var (
		upstream *ai.UpstreamChatError
		format   *speechservice.UnsupportedAudioFormatError
	)

	switch {
	case errors.Is(err, ai.ErrInvalidInput), errors.Is(err, chatservice.ErrPersonaRequired):
		return Problem{Status: http.StatusBadRequest, Message: MsgInvalidInput}
	case errors.Is(err, persona.ErrPersonaNotFound):
		return Problem{Status: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, ai.ErrUpstreamTimeout), errors.Is(err, speechservice.ErrTimeout):
		return Problem{Status: http.StatusGatewayTimeout, Message: msgTimeout, Details: err.Error()}
	case errors.Is(err, ai.ErrEmptyUpstreamResponse):
		return Problem{Status: http.StatusInternalServerError, Message: msgEmptyReply}
	case errors.As(err, &upstream):
		return Problem{Status: http.StatusInternalServerError, Message: msgUpstreamChat, Details: upstream.Error()}
	case errors.As(err, &format):
		return Problem{Status: http.StatusBadRequest, Message: format.Error()}
	case errors.Is(err, speechservice.ErrEmptyAudio):
		return Problem{Status: http.StatusBadRequest, Message: msgEmptyAudio}
	case errors.Is(err, speechservice.ErrInvalidWAV):
		return Problem{Status: http.StatusBadRequest, Message: msgInvalidWAV, Details: err.Error()}
	case errors.Is(err, speechservice.ErrRecognizerUnavailable):
		return Problem{Status: http.StatusInternalServerError, Message: msgNoRecognizer, Details: err.Error()}
	case errors.Is(err, chatservice.ErrStoreUnavailable):
		return Problem{Status: http.StatusInternalServerError, Message: msgHistoryFailure, Details: err.Error()}
	default:
		if fallback == "" {
			fallback = MsgProcessing
		}
		return Problem{Status: http.StatusInternalServerError, Message: fallback, Details: err.Error()}
	}
}

// Write logs err and renders it.
func Write(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	p := Classify(err, fallback)

	logger := logging.For("http")
	event := logger.Warn()
	if p.Status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("request_id", chimiddleware.GetReqID(r.Context())).
		Str("path", r.URL.Path).
		Int("status", p.Status).
		Msg(p.Message)

	utils.RespondErrorDetails(w, p.Status, p.Message, p.Details)
}
