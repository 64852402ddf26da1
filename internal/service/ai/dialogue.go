package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/museumai/kiosk/backend/internal/logging"
	"github.com/museumai/kiosk/backend/internal/model/persona"
	chatservice "github.com/museumai/kiosk/backend/internal/service/chat"
)

const (
	// DefaultModel is the model the kiosk was tuned against on arli.ai.
	DefaultModel   = "Meta-Llama-3.1-8B-Instruct"
	DefaultTimeout = 60 * time.Second
)

// Options tunes a DialogueSession.
type Options struct {
	Model   string
	Timeout time.Duration
}

// Reply is the assistant's answer for one turn.
type Reply struct {
	PersonaID string `json:"personaId"`
	Text      string `json:"text"`
	Model     string `json:"model"`
}

// DialogueSession runs one conversational turn against the chat provider.
// It holds no state of its own; history lives in the store.
type DialogueSession struct {
	personas persona.Store
	history  chatservice.Store
	provider ChatProvider
	prompts  *PromptBuilder
	model    string
	timeout  time.Duration
}

// NewDialogueSession wires the orchestrator to its collaborators.
func NewDialogueSession(personas persona.Store, history chatservice.Store, provider ChatProvider, opts Options) *DialogueSession {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &DialogueSession{
		personas: personas,
		history:  history,
		provider: provider,
		prompts:  NewPromptBuilder(),
		model:    opts.Model,
		timeout:  opts.Timeout,
	}
}

// Model returns the model identifier sent to the provider.
func (s *DialogueSession) Model() string {
	return s.model
}

// Respond records userText for personaID, asks the provider for a reply,
// and records the reply. A failed provider call leaves the user turn in
// history.
func (s *DialogueSession) Respond(ctx context.Context, personaID, userText string) (*Reply, error) {
	personaID = strings.TrimSpace(personaID)
	if personaID == "" || strings.TrimSpace(userText) == "" {
		return nil, fmt.Errorf("%w: 'user_input' and 'personality' are required", ErrInvalidInput)
	}

	p, err := s.personas.Get(personaID)
	if err != nil {
		return nil, err
	}

	logger := logging.For("ai")

	if err := s.history.AppendUser(ctx, p.ID, userText); err != nil {
		return nil, fmt.Errorf("failed to record user turn: %w", err)
	}

	history, err := s.history.Snapshot(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	messages, err := s.prompts.Build(ctx, p, history)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("persona", p.ID).Int("messages", len(messages)).Str("model", s.model).Msg("sending chat request")

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content, err := s.provider.Complete(callCtx, s.model, messages)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			logger.Error().Err(err).Str("persona", p.ID).Dur("timeout", s.timeout).Msg("chat request timed out")
			return nil, fmt.Errorf("%w after %s", ErrUpstreamTimeout, s.timeout)
		}
		logger.Error().Err(err).Str("persona", p.ID).Msg("chat request failed")
		var upstream *UpstreamChatError
		if errors.As(err, &upstream) {
			return nil, err
		}
		return nil, &UpstreamChatError{Detail: err.Error(), Err: err}
	}

	text := strings.TrimSpace(content)
	if text == "" {
		logger.Error().Str("persona", p.ID).Msg("AI returned empty response")
		return nil, ErrEmptyUpstreamResponse
	}

	if err := s.history.AppendAssistant(ctx, p.ID, text); err != nil {
		return nil, fmt.Errorf("failed to record assistant turn: %w", err)
	}

	logger.Info().Str("persona", p.ID).Int("length", len(text)).Msg("generated response")
	return &Reply{PersonaID: p.ID, Text: text, Model: s.model}, nil
}
