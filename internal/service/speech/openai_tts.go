package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"

	speechmodel "github.com/museumai/kiosk/backend/internal/model/speech"
)

var openAIVoices = []speechmodel.Voice{
	{ID: string(openai.VoiceAlloy), Name: "Alloy"},
	{ID: string(openai.VoiceEcho), Name: "Echo"},
	{ID: string(openai.VoiceFable), Name: "Fable"},
	{ID: string(openai.VoiceOnyx), Name: "Onyx"},
	{ID: string(openai.VoiceNova), Name: "Nova"},
	{ID: string(openai.VoiceShimmer), Name: "Shimmer"},
}

// OpenAISynthesizer uses the audio/speech endpoint of an OpenAI-compatible API.
type OpenAISynthesizer struct {
	client *openai.Client
	model  openai.SpeechModel
}

// NewOpenAISynthesizer returns a synthesizer. Empty baseURL and model use
// the OpenAI defaults.
func NewOpenAISynthesizer(apiKey, baseURL, model string) *OpenAISynthesizer {
	cfg := openai.DefaultConfig(apiKey)
	if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
		cfg.BaseURL = trimmed
	}
	m := openai.TTSModel1
	if model != "" {
		m = openai.SpeechModel(model)
	}
	return &OpenAISynthesizer{client: openai.NewClientWithConfig(cfg), model: m}
}

func (s *OpenAISynthesizer) Name() string { return "openai" }

// Voices returns the fixed built-in voice list.
func (s *OpenAISynthesizer) Voices(context.Context) ([]speechmodel.Voice, error) {
	return append([]speechmodel.Voice(nil), openAIVoices...), nil
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, req speechmodel.SynthesisRequest) (*speechmodel.SynthesisResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: text is empty", ErrSynthesisFailed)
	}

	voice := openai.VoiceAlloy
	if req.VoiceID != "" {
		voice = openai.SpeechVoice(req.VoiceID)
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          req.Text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          rateToSpeed(req.Rate),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", ErrSynthesisFailed, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio response", ErrSynthesisFailed)
	}

	return &speechmodel.SynthesisResult{Audio: audio, Format: "mp3", MimeType: "audio/mpeg"}, nil
}

// rateToSpeed maps words per minute onto the API's speed multiplier,
// treating DefaultRate as 1.0.
func rateToSpeed(rate int) float64 {
	if rate <= 0 {
		return 1.0
	}
	speed := float64(rate) / DefaultRate
	if speed < 0.25 {
		return 0.25
	}
	if speed > 4.0 {
		return 4.0
	}
	return speed
}
