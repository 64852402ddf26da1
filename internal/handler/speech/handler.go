package speech

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"github.com/museumai/kiosk/backend/internal/handler/apierror"
	"github.com/museumai/kiosk/backend/internal/logging"
	"github.com/museumai/kiosk/backend/internal/model/persona"
	speechmodel "github.com/museumai/kiosk/backend/internal/model/speech"
	speechsvc "github.com/museumai/kiosk/backend/internal/service/speech"
	"github.com/museumai/kiosk/backend/pkg/utils"
)

const maxUploadBytes = 32 << 20 // 32MB

// Handler 语音服务的HTTP处理器
type Handler struct {
	speechSvc    *speechsvc.Service
	personaStore persona.Store
}

// New 创建语音处理器
func New(speechSvc *speechsvc.Service, personaStore persona.Store) *Handler {
	return &Handler{
		speechSvc:    speechSvc,
		personaStore: personaStore,
	}
}

// RegisterRoutes 注册语音相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/recognize", h.handleRecognize)
	r.Get("/voices", h.handleVoices)
	r.Post("/speech/synthesize", h.handleSynthesize)
}

type voicesResponse struct {
	Voices   []speechmodel.Voice        `json:"voices"`
	Bindings []speechmodel.VoiceBinding `json:"bindings"`
}

type synthesizeRequest struct {
	Personality string `json:"personality"`
	Text        string `json:"text"`
}

// handleRecognize 处理语音转文本请求
func (h *Handler) handleRecognize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			utils.RespondError(w, http.StatusBadRequest, apierror.MsgNoAudioUpload)
			return
		}
		utils.RespondErrorDetails(w, http.StatusBadRequest, apierror.MsgAudioFailed, err.Error())
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		logging.For("speech").Warn().Msg("no audio file uploaded")
		utils.RespondError(w, http.StatusBadRequest, apierror.MsgNoAudioUpload)
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		apierror.Write(w, r, err, apierror.MsgAudioFailed)
		return
	}

	logging.For("speech").Info().
		Str("filename", header.Filename).
		Int("bytes", len(audio)).
		Msg("recognize request")

	if h.speechSvc == nil {
		apierror.Write(w, r, speechsvc.ErrRecognizerUnavailable, apierror.MsgAudioFailed)
		return
	}

	text, err := h.speechSvc.Transcribe(r.Context(), audio)
	if err != nil {
		apierror.Write(w, r, err, apierror.MsgAudioFailed)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"transcription": text})
}

// handleVoices lists engine voices and the persona bindings made at startup.
func (h *Handler) handleVoices(w http.ResponseWriter, r *http.Request) {
	resp := voicesResponse{
		Voices:   []speechmodel.Voice{},
		Bindings: []speechmodel.VoiceBinding{},
	}
	if h.speechSvc != nil {
		if voices := h.speechSvc.Voices(); len(voices) > 0 {
			resp.Voices = voices
		}
		resp.Bindings = h.speechSvc.Bindings()
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleSynthesize 处理文本转语音请求，直接返回音频
func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var req synthesizeRequest
	if err := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		utils.RespondErrorDetails(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" || strings.TrimSpace(req.Personality) == "" {
		utils.RespondError(w, http.StatusBadRequest, "'text' and 'personality' are required.")
		return
	}
	if _, err := h.personaStore.Get(req.Personality); err != nil {
		apierror.Write(w, r, err, apierror.MsgProcessing)
		return
	}
	if h.speechSvc == nil || !h.speechSvc.CanSynthesize() {
		apierror.Write(w, r, speechsvc.ErrSynthesisFailed, apierror.MsgProcessing)
		return
	}

	result, err := h.speechSvc.SynthesizeForPersona(r.Context(), req.Personality, req.Text)
	if err != nil {
		apierror.Write(w, r, err, apierror.MsgProcessing)
		return
	}

	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Audio)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Audio); err != nil {
		logging.For("speech").Debug().Err(err).Msg("failed to write audio")
	}
}
