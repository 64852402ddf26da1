package speech

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/museumai/kiosk/backend/internal/logging"
	"github.com/museumai/kiosk/backend/internal/model/persona"
	speechmodel "github.com/museumai/kiosk/backend/internal/model/speech"
)

// ServiceOptions tunes Service.
type ServiceOptions struct {
	Rate    int
	Timeout time.Duration
}

// Service 语音服务核心业务逻辑
//
// Voices are enumerated once in NewService and bound to personas; the
// bindings are read-only afterward.
type Service struct {
	synth       Synthesizer
	transcriber *Transcriber
	voices      []speechmodel.Voice
	bindings    map[string]speechmodel.VoiceBinding
	rate        int
	timeout     time.Duration
}

// NewService 创建语音服务实例. Either synth or transcriber may be nil.
func NewService(ctx context.Context, synth Synthesizer, transcriber *Transcriber, selector *VoiceSelector, personas []persona.Persona, opts ServiceOptions) *Service {
	if opts.Rate <= 0 {
		opts.Rate = DefaultRate
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if selector == nil {
		selector = NewVoiceSelector(nil)
	}

	s := &Service{
		synth:       synth,
		transcriber: transcriber,
		rate:        opts.Rate,
		timeout:     opts.Timeout,
	}

	if synth != nil {
		voices, err := synth.Voices(ctx)
		if err != nil {
			logging.For("speech").Warn().Err(err).Str("engine", synth.Name()).Msg("failed to enumerate voices")
		}
		s.voices = voices
	}
	s.bindings = selector.BindVoices(personas, s.voices)
	return s
}

// Voices returns the voices enumerated at startup.
func (s *Service) Voices() []speechmodel.Voice {
	return append([]speechmodel.Voice(nil), s.voices...)
}

// Bindings returns the persona voice bindings sorted by persona id.
func (s *Service) Bindings() []speechmodel.VoiceBinding {
	out := make([]speechmodel.VoiceBinding, 0, len(s.bindings))
	for _, b := range s.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PersonaID < out[j].PersonaID })
	return out
}

// CanSynthesize reports whether a synthesizer is configured.
func (s *Service) CanSynthesize() bool { return s.synth != nil }

// CanTranscribe reports whether a transcriber is configured.
func (s *Service) CanTranscribe() bool { return s.transcriber != nil }

// SynthesizeForPersona speaks text with the persona's bound voice.
func (s *Service) SynthesizeForPersona(ctx context.Context, personaID, text string) (*speechmodel.SynthesisResult, error) {
	if s.synth == nil {
		return nil, fmt.Errorf("%w: no synthesizer configured", ErrSynthesisFailed)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	binding := s.bindings[personaID]
	result, err := s.synth.Synthesize(callCtx, speechmodel.SynthesisRequest{
		Text:    text,
		VoiceID: binding.VoiceID,
		Rate:    s.rate,
	})
	if err != nil {
		if !errors.Is(err, ErrTimeout) && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %v", ErrTimeout, s.timeout, err)
		}
		return nil, err
	}

	logging.For("speech").Debug().
		Str("persona", personaID).
		Str("voice", binding.VoiceID).
		Int("bytes", len(result.Audio)).
		Msg("speech synthesized")
	return result, nil
}

// Transcribe delegates to the configured Transcriber.
func (s *Service) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if s.transcriber == nil {
		return "", fmt.Errorf("%w: no transcriber configured", ErrRecognizerUnavailable)
	}
	return s.transcriber.Transcribe(ctx, audio)
}
