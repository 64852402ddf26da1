package chat

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"github.com/museumai/kiosk/backend/internal/handler/apierror"
	"github.com/museumai/kiosk/backend/internal/logging"
	"github.com/museumai/kiosk/backend/internal/model/chat"
	"github.com/museumai/kiosk/backend/internal/model/persona"
	"github.com/museumai/kiosk/backend/internal/service/ai"
	chatService "github.com/museumai/kiosk/backend/internal/service/chat"
	speechService "github.com/museumai/kiosk/backend/internal/service/speech"
	"github.com/museumai/kiosk/backend/pkg/utils"
)

const maxRequestBytes = 1 << 20

// Handler 对话服务的HTTP处理器
type Handler struct {
	dialogue     *ai.DialogueSession
	history      chatService.Store
	personaStore persona.Store
	speechSvc    *speechService.Service
}

// New 创建对话处理器. speechSvc may be nil, in which case replies carry no audio.
func New(dialogue *ai.DialogueSession, history chatService.Store, personaStore persona.Store, speechSvc *speechService.Service) *Handler {
	return &Handler{
		dialogue:     dialogue,
		history:      history,
		personaStore: personaStore,
		speechSvc:    speechSvc,
	}
}

// RegisterRoutes 注册对话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/respond", h.handleRespond)
	r.Get("/history/{personality}", h.handleGetHistory)
	r.Delete("/history/{personality}", h.handleResetHistory)
}

type respondRequest struct {
	UserInput   string `json:"user_input"`
	Personality string `json:"personality"`
	Language    string `json:"language"`
}

type respondResponse struct {
	AIText        string `json:"ai_text"`
	Audio         string `json:"audio"`
	AudioMimeType string `json:"audio_mime_type,omitempty"`
}

type historyResponse struct {
	Personality string      `json:"personality"`
	History     []chat.Turn `json:"history"`
}

// handleRespond 生成人物回复并合成语音
func (h *Handler) handleRespond(w http.ResponseWriter, r *http.Request) {
	var payload respondRequest
	if err := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&payload); err != nil {
		utils.RespondErrorDetails(w, http.StatusBadRequest, apierror.MsgInvalidInput, err.Error())
		return
	}
	if payload.Language == "" {
		payload.Language = "en"
	}

	logger := logging.For("chat")
	logger.Info().
		Str("personality", payload.Personality).
		Str("language", payload.Language).
		Str("user_input", payload.UserInput).
		Msg("respond request")

	if h.dialogue == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "chat provider unavailable")
		return
	}

	reply, err := h.dialogue.Respond(r.Context(), payload.Personality, payload.UserInput)
	if err != nil {
		h.writeError(w, r, payload.Personality, err)
		return
	}

	resp := respondResponse{AIText: reply.Text}
	if h.speechSvc != nil && h.speechSvc.CanSynthesize() {
		audio, err := h.speechSvc.SynthesizeForPersona(r.Context(), reply.PersonaID, reply.Text)
		if err != nil {
			apierror.Write(w, r, err, apierror.MsgProcessing)
			return
		}
		resp.Audio = base64.StdEncoding.EncodeToString(audio.Audio)
		resp.AudioMimeType = audio.MimeType
	} else {
		logger.Warn().Str("personality", reply.PersonaID).Msg("no synthesizer configured, replying without audio")
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleGetHistory 返回人物的对话历史
func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "personality")
	if _, err := h.personaStore.Get(id); err != nil {
		h.writeError(w, r, id, err)
		return
	}

	turns, err := h.history.Snapshot(r.Context(), id)
	if err != nil {
		h.writeError(w, r, id, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, historyResponse{Personality: id, History: turns})
}

// handleResetHistory 清空人物的对话历史
func (h *Handler) handleResetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "personality")
	if _, err := h.personaStore.Get(id); err != nil {
		h.writeError(w, r, id, err)
		return
	}

	if err := h.history.Reset(r.Context(), id); err != nil {
		h.writeError(w, r, id, err)
		return
	}

	logging.For("chat").Info().Str("personality", id).Msg("history reset")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, personaID string, err error) {
	if errors.Is(err, persona.ErrPersonaNotFound) {
		logging.For("chat").Warn().Str("personality", personaID).Msg("personality not found")
		utils.RespondError(w, http.StatusNotFound, fmt.Sprintf("Personality '%s' not found.", strings.TrimSpace(personaID)))
		return
	}
	apierror.Write(w, r, err, apierror.MsgProcessing)
}
