package speech

import "context"

// RecognitionResult is the recognizer's answer to one fed chunk. Text is
// a finalized segment when Finalized is true and a partial hypothesis
// otherwise.
type RecognitionResult struct {
	Finalized bool
	Text      string
}

// Recognizer opens streaming recognition sessions.
type Recognizer interface {
	NewSession(ctx context.Context, sampleRate int) (RecognizerSession, error)
}

// RecognizerSession consumes PCM chunks in order. Finalize flushes the
// trailing segment after the last chunk.
type RecognizerSession interface {
	Feed(ctx context.Context, chunk []byte) (RecognitionResult, error)
	Finalize(ctx context.Context) (string, error)
	Close() error
}
