package speech

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	speechmodel "github.com/museumai/kiosk/backend/internal/model/speech"
)

// DefaultTTSCommand is the local engine binary.
const DefaultTTSCommand = "espeak-ng"

// CommandSynthesizer drives a local espeak-ng compatible engine. Text is
// passed on stdin and audio is written to a temp WAV that is removed
// after reading.
type CommandSynthesizer struct {
	command string
	timeout time.Duration
	tempDir string
}

// CommandConfig configures CommandSynthesizer.
type CommandConfig struct {
	Command string
	Timeout time.Duration
	TempDir string
}

// NewCommandSynthesizer returns a synthesizer for cfg.Command.
func NewCommandSynthesizer(cfg CommandConfig) *CommandSynthesizer {
	if cfg.Command == "" {
		cfg.Command = DefaultTTSCommand
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &CommandSynthesizer{command: cfg.Command, timeout: cfg.Timeout, tempDir: cfg.TempDir}
}

func (c *CommandSynthesizer) Name() string { return "command" }

// Voices runs `<command> --voices` and parses its table.
func (c *CommandSynthesizer) Voices(ctx context.Context) ([]speechmodel.Voice, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := exec.CommandContext(cmdCtx, c.command, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("%s --voices failed: %w", c.command, err)
	}
	return parseVoiceTable(out), nil
}

// Synthesize renders req.Text to WAV.
func (c *CommandSynthesizer) Synthesize(ctx context.Context, req speechmodel.SynthesisRequest) (*speechmodel.SynthesisResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: text is empty", ErrSynthesisFailed)
	}

	out, err := os.CreateTemp(c.tempDir, "kiosk-tts-*.wav")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	rate := req.Rate
	if rate <= 0 {
		rate = DefaultRate
	}

	args := []string{"-s", strconv.Itoa(rate), "-w", outPath, "--stdin"}
	if req.VoiceID != "" {
		args = append([]string{"-v", req.VoiceID}, args...)
	}

	cmdCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, c.command, args...)
	cmd.Stdin = strings.NewReader(req.Text)
	if output, err := cmd.CombinedOutput(); err != nil {
		if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return nil, fmt.Errorf("%w: %s failed: %v (output: %s)", ErrSynthesisFailed, c.command, err, strings.TrimSpace(string(output)))
	}

	audio, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read output: %v", ErrSynthesisFailed, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: audio file was not generated or is empty", ErrSynthesisFailed)
	}

	return &speechmodel.SynthesisResult{Audio: audio, Format: "wav", MimeType: "audio/wav"}, nil
}

// parseVoiceTable reads espeak-ng's
// "Pty Language Age/Gender VoiceName File Other Languages" listing.
func parseVoiceTable(out []byte) []speechmodel.Voice {
	var voices []speechmodel.Voice
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 5 || fields[0] == "Pty" {
			continue
		}
		voice := speechmodel.Voice{
			ID:        fields[4],
			Name:      strings.ReplaceAll(fields[3], "_", " "),
			Languages: []string{fields[1]},
		}
		for _, other := range fields[5:] {
			lang := strings.TrimPrefix(other, "(")
			if lang == other || lang == "" {
				continue
			}
			voice.Languages = append(voice.Languages, lang)
		}
		voices = append(voices, voice)
	}
	return voices
}
