package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/museumai/kiosk/backend/internal/model/persona"
	"github.com/museumai/kiosk/backend/pkg/utils"
)

// Handler persona服务的HTTP处理器
type Handler struct {
	personas persona.Store
}

// New 创建persona处理器
func New(personas persona.Store) *Handler {
	return &Handler{
		personas: personas,
	}
}

// RegisterRoutes 注册persona相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personalities", h.handlePersonalities)
	r.Get("/personas", h.handleListPersonas)
}

type personalityEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
}

// handlePersonalities returns the registry keyed by persona id.
func (h *Handler) handlePersonalities(w http.ResponseWriter, r *http.Request) {
	list := h.personas.List()
	registry := make(map[string]personalityEntry, len(list))
	for _, p := range list {
		registry[p.ID] = personalityEntry{Name: p.Name, Description: p.Description, Prompt: p.Prompt}
	}
	utils.RespondJSON(w, http.StatusOK, registry)
}

// handleListPersonas 列出所有persona
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}
