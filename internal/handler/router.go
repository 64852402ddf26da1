package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/museumai/kiosk/backend/internal/handler/chat"
	"github.com/museumai/kiosk/backend/internal/handler/persona"
	"github.com/museumai/kiosk/backend/internal/handler/speech"
	middlewarePkg "github.com/museumai/kiosk/backend/internal/middleware"
	personaModel "github.com/museumai/kiosk/backend/internal/model/persona"
	aiService "github.com/museumai/kiosk/backend/internal/service/ai"
	chatService "github.com/museumai/kiosk/backend/internal/service/chat"
	speechService "github.com/museumai/kiosk/backend/internal/service/speech"
	"github.com/museumai/kiosk/backend/pkg/utils"
)

// Dependencies are the services the router exposes. Dialogue and Speech
// may be nil when their backends are not configured.
type Dependencies struct {
	Personas    personaModel.Store
	History     chatService.Store
	Dialogue    *aiService.DialogueSession
	Speech      *speechService.Service
	RateLimiter *middlewarePkg.RateLimiter
	// Backends names the configured implementations for /api/health.
	Backends map[string]string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	personaHandler := persona.New(deps.Personas)
	chatHandler := chat.New(deps.Dialogue, deps.History, deps.Personas, deps.Speech)
	speechHandler := speech.New(deps.Speech, deps.Personas)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"status":   "ok",
				"backends": deps.Backends,
			})
		})

		personaHandler.RegisterRoutes(api)

		api.Group(func(limited chi.Router) {
			if deps.RateLimiter != nil && deps.RateLimiter.Enabled() {
				limited.Use(deps.RateLimiter.Middleware)
			}
			chatHandler.RegisterRoutes(limited)
			speechHandler.RegisterRoutes(limited)
		})
	})

	return r
}
