package speech

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/museumai/kiosk/backend/internal/model/persona"
	speechmodel "github.com/museumai/kiosk/backend/internal/model/speech"
)

type recordingSynthesizer struct {
	countingSynthesizer
	last speechmodel.SynthesisRequest
	wait bool
}

func (r *recordingSynthesizer) Synthesize(ctx context.Context, req speechmodel.SynthesisRequest) (*speechmodel.SynthesisResult, error) {
	r.last = req
	if r.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return r.countingSynthesizer.Synthesize(ctx, req)
}

func TestServiceUsesBoundVoice(t *testing.T) {
	synth := &recordingSynthesizer{countingSynthesizer: countingSynthesizer{voices: sampleVoices}}
	svc := NewService(context.Background(), synth, nil, NewVoiceSelector(nil), persona.Seed(), ServiceOptions{})

	result, err := svc.SynthesizeForPersona(context.Background(), "marie_curie", "Nothing in life is to be feared.")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Audio)
	assert.Equal(t, "v-zira", synth.last.VoiceID)
	assert.Equal(t, DefaultRate, synth.last.Rate)

	bindings := svc.Bindings()
	require.Len(t, bindings, 5)
	assert.Equal(t, "albert_einstein", bindings[0].PersonaID)
	assert.Len(t, svc.Voices(), 3)
}

func TestServiceWithoutVoicesUsesEngineDefault(t *testing.T) {
	synth := &recordingSynthesizer{}
	svc := NewService(context.Background(), synth, nil, nil, persona.Seed(), ServiceOptions{Rate: 120})

	_, err := svc.SynthesizeForPersona(context.Background(), "isaac_newton", "hello")
	require.NoError(t, err)
	assert.Empty(t, synth.last.VoiceID)
	assert.Equal(t, 120, synth.last.Rate)
}

func TestServiceSynthesisTimeout(t *testing.T) {
	synth := &recordingSynthesizer{wait: true}
	svc := NewService(context.Background(), synth, nil, nil, persona.Seed(), ServiceOptions{Timeout: 20 * time.Millisecond})

	_, err := svc.SynthesizeForPersona(context.Background(), "isaac_newton", "hello")
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
}

func TestServiceWithoutBackends(t *testing.T) {
	svc := NewService(context.Background(), nil, nil, nil, persona.Seed(), ServiceOptions{})
	assert.False(t, svc.CanSynthesize())
	assert.False(t, svc.CanTranscribe())

	_, err := svc.SynthesizeForPersona(context.Background(), "isaac_newton", "hello")
	require.ErrorIs(t, err, ErrSynthesisFailed)

	_, err = svc.Transcribe(context.Background(), EncodeWAV(nil, 1, 16000))
	require.ErrorIs(t, err, ErrRecognizerUnavailable)
}
