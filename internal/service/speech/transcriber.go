package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/museumai/kiosk/backend/internal/logging"
)

// DefaultChunkFrames matches the 4000-frame reads the recognizer is tuned for.
const DefaultChunkFrames = 4000

// TranscriberOptions tunes a Transcriber.
type TranscriberOptions struct {
	ChunkFrames int
	Timeout     time.Duration
	TempDir     string
}

// Transcriber validates WAV uploads and drives a streaming recognizer over
// them. The PCM payload is staged in a temp file that is always removed.
type Transcriber struct {
	recognizer  Recognizer
	chunkFrames int
	timeout     time.Duration
	tempDir     string
}

// NewTranscriber returns a Transcriber. A nil recognizer makes every call
// fail with ErrRecognizerUnavailable after validation.
func NewTranscriber(recognizer Recognizer, opts TranscriberOptions) *Transcriber {
	if opts.ChunkFrames <= 0 {
		opts.ChunkFrames = DefaultChunkFrames
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Transcriber{
		recognizer:  recognizer,
		chunkFrames: opts.ChunkFrames,
		timeout:     opts.Timeout,
		tempDir:     opts.TempDir,
	}
}

// Transcribe returns the trimmed transcript of a mono 16-bit 16 kHz WAV file.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	logger := logging.For("asr")

	info, pcm, err := ParseWAV(audio)
	if err != nil {
		return "", err
	}

	logger.Info().
		Int("channels", info.Channels).
		Int("sample_width", info.BitsPerSample/8).
		Int("frame_rate", info.SampleRate).
		Int("frames", info.Frames(pcm)).
		Msg("audio properties")

	if err := ValidateRecognizerFormat(info); err != nil {
		return "", err
	}

	if t.recognizer == nil {
		return "", fmt.Errorf("%w: no recognizer configured", ErrRecognizerUnavailable)
	}

	staged, err := t.stage(pcm)
	if err != nil {
		return "", err
	}
	defer func() {
		staged.Close()
		if err := os.Remove(staged.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn().Err(err).Str("path", staged.Name()).Msg("failed to remove staged audio")
			return
		}
		logger.Debug().Str("path", staged.Name()).Msg("staged audio removed")
	}()

	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	text, err := t.recognize(callCtx, staged, info)
	if err != nil {
		if isTimeout(callCtx, err) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, t.timeout)
		}
		return "", err
	}

	logger.Info().Str("transcription", text).Msg("transcription complete")
	return text, nil
}

func (t *Transcriber) stage(pcm []byte) (*os.File, error) {
	f, err := os.CreateTemp(t.tempDir, "kiosk-asr-*.pcm")
	if err != nil {
		return nil, fmt.Errorf("failed to stage audio: %w", err)
	}
	if _, err := f.Write(pcm); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to stage audio: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to stage audio: %w", err)
	}
	return f, nil
}

func (t *Transcriber) recognize(ctx context.Context, r io.Reader, info WAVInfo) (string, error) {
	session, err := t.recognizer.NewSession(ctx, info.SampleRate)
	if err != nil {
		return "", err
	}
	defer session.Close()

	logger := logging.For("asr")
	var builder strings.Builder
	buf := make([]byte, t.chunkFrames*recognizerFrameBytes)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, readErr := io.ReadFull(r, buf)
		if n > 0 {
			result, err := session.Feed(ctx, buf[:n])
			if err != nil {
				return "", err
			}
			switch {
			case result.Finalized && result.Text != "":
				logger.Debug().Str("text", result.Text).Msg("partial transcription")
				builder.WriteString(result.Text)
				builder.WriteString(" ")
			case result.Text != "":
				logger.Debug().Str("partial", result.Text).Msg("partial result")
			}
		}
		if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
			break
		}
		if readErr != nil {
			return "", fmt.Errorf("failed to read staged audio: %w", readErr)
		}
	}

	final, err := session.Finalize(ctx)
	if err != nil {
		return "", err
	}
	if final != "" {
		logger.Debug().Str("text", final).Msg("final transcription")
		builder.WriteString(final)
	}

	return strings.TrimSpace(builder.String()), nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
