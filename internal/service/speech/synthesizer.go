package speech

import (
	"context"

	speechmodel "github.com/museumai/kiosk/backend/internal/model/speech"
)

// DefaultRate is the speaking rate in words per minute.
const DefaultRate = 150

// Synthesizer turns text into audio and can enumerate its voices.
type Synthesizer interface {
	Name() string
	Voices(ctx context.Context) ([]speechmodel.Voice, error)
	Synthesize(ctx context.Context, req speechmodel.SynthesisRequest) (*speechmodel.SynthesisResult, error)
}
