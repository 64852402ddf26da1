package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/museumai/kiosk/backend/internal/app"
	"github.com/museumai/kiosk/backend/internal/config"
	"github.com/museumai/kiosk/backend/internal/handler"
	"github.com/museumai/kiosk/backend/internal/logging"
	"github.com/museumai/kiosk/backend/internal/middleware"
	"github.com/museumai/kiosk/backend/internal/model/persona"
	"github.com/museumai/kiosk/backend/internal/service/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if _, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("failed to configure logging")
	}
	logger := logging.For("main")
	if envErr != nil {
		logger.Debug().Err(envErr).Msg("no .env file loaded, using system environment only")
	}

	personaStore := persona.NewMemoryStore(persona.Seed())

	history, err := app.NewHistory(ctx, cfg.History)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize conversation history")
	}
	defer history.Close()
	logger.Info().Str("backend", history.Backend).Int("max_history", cfg.History.MaxHistory).Msg("conversation history ready")

	dialogue, chatBackend, err := app.NewDialogue(ctx, cfg.Chat, personaStore, history.Store)
	if err != nil {
		logger.Warn().Err(err).Msg("chat provider unavailable, /api/respond will answer 503")
		dialogue, chatBackend = nil, "none"
	} else {
		logger.Info().Str("provider", chatBackend).Str("model", dialogue.Model()).Msg("chat provider initialized")
	}

	var speechService *speech.Service
	speechService, err = app.NewSpeechService(ctx, *cfg, personaStore.List())
	if err != nil {
		logger.Warn().Err(err).Msg("speech service unavailable")
		speechService = nil
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPM, cfg.RateLimit.Burst)
	defer limiter.Stop()

	router := handler.NewRouter(handler.Dependencies{
		Personas:    personaStore,
		History:     history.Store,
		Dialogue:    dialogue,
		Speech:      speechService,
		RateLimiter: limiter,
		Backends: map[string]string{
			"chat":    chatBackend,
			"history": history.Backend,
			"tts":     cfg.Speech.TTSProvider,
			"asr":     cfg.Speech.ASRURL,
		},
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger := logging.For("main")
	logger.Info().Str("addr", addr).Msg("museum kiosk backend listening")
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
