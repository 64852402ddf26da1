// Package app builds the service graph from configuration. It is shared
// by the API server and kioskctl.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/museumai/kiosk/backend/internal/config"
	"github.com/museumai/kiosk/backend/internal/logging"
	"github.com/museumai/kiosk/backend/internal/model/persona"
	"github.com/museumai/kiosk/backend/internal/service/ai"
	"github.com/museumai/kiosk/backend/internal/service/chat"
	"github.com/museumai/kiosk/backend/internal/service/speech"
)

// History is a conversation store plus the function releasing it.
type History struct {
	Store   chat.Store
	Backend string
	Close   func() error
}

// NewHistory opens the configured conversation store. The Redis backend
// is pinged before use.
func NewHistory(ctx context.Context, cfg config.HistoryConfig) (*History, error) {
	if cfg.Backend != config.HistoryBackendRedis {
		return &History{
			Store:   chat.NewMemoryStore(cfg.MaxHistory),
			Backend: config.HistoryBackendMemory,
			Close:   func() error { return nil },
		}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	store := chat.NewRedisStore(client, cfg.RedisPrefix, cfg.MaxHistory)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis history backend at %s: %w", cfg.RedisAddr, err)
	}

	return &History{Store: store, Backend: config.HistoryBackendRedis, Close: client.Close}, nil
}

// NewChatProvider returns the configured chat provider and the name of the backend.
func NewChatProvider(ctx context.Context, cfg config.ChatConfig) (ai.ChatProvider, string, error) {
	switch cfg.Provider {
	case config.ChatProviderArk:
		chatModel, err := cfg.Ark.NewChatModel(ctx)
		if err != nil {
			return nil, "", err
		}
		return ai.NewEinoProvider(chatModel), config.ChatProviderArk, nil
	default:
		if cfg.APIKey == "" {
			logging.For("app").Warn().Msg("ARLIAI_API_KEY is empty, chat requests will likely be rejected")
		}
		return ai.NewOpenAIProvider(cfg.APIKey, cfg.BaseURL), config.ChatProviderOpenAI, nil
	}
}

// NewDialogue builds the DialogueSession for cfg.
func NewDialogue(ctx context.Context, cfg config.ChatConfig, personas persona.Store, history chat.Store) (*ai.DialogueSession, string, error) {
	provider, name, err := NewChatProvider(ctx, cfg)
	if err != nil {
		return nil, "", err
	}
	model := cfg.Model
	if cfg.Provider == config.ChatProviderArk {
		model = cfg.Ark.Model
	}
	return ai.NewDialogueSession(personas, history, provider, ai.Options{Model: model, Timeout: cfg.Timeout}), name, nil
}

// NewSynthesizer returns the configured synthesizer, cache-wrapped when
// TTSCacheSize is positive. It returns nil for the "none" provider.
func NewSynthesizer(cfg config.Config) (speech.Synthesizer, error) {
	s := cfg.Speech
	var synth speech.Synthesizer
	switch s.TTSProvider {
	case config.TTSProviderNone:
		return nil, nil
	case config.TTSProviderOpenAI:
		synth = speech.NewOpenAISynthesizer(s.OpenAIAPIKey, s.OpenAIBaseURL, s.OpenAIModel)
	default:
		synth = speech.NewCommandSynthesizer(speech.CommandConfig{
			Command: s.TTSCommand,
			Timeout: time.Duration(s.TTSTimeout) * time.Second,
		})
	}
	return speech.NewCachedSynthesizer(synth, s.TTSCacheSize)
}

// NewTranscriber returns a Transcriber backed by vosk-server.
func NewTranscriber(cfg config.Config) *speech.Transcriber {
	timeout := time.Duration(cfg.Speech.ASRTimeout) * time.Second
	recognizer := speech.NewVoskRecognizer(cfg.Speech.ASRURL, 10*time.Second)
	return speech.NewTranscriber(recognizer, speech.TranscriberOptions{Timeout: timeout})
}

// NewSpeechService enumerates voices and binds them to personas.
func NewSpeechService(ctx context.Context, cfg config.Config, personas []persona.Persona) (*speech.Service, error) {
	synth, err := NewSynthesizer(cfg)
	if err != nil {
		return nil, err
	}
	return speech.NewService(ctx, synth, NewTranscriber(cfg), speech.NewVoiceSelector(cfg.Speech.VoicePreferences), personas, speech.ServiceOptions{
		Rate:    cfg.Speech.TTSRate,
		Timeout: time.Duration(cfg.Speech.TTSTimeout) * time.Second,
	}), nil
}
