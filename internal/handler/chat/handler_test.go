package chat

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"

	"github.com/museumai/kiosk/backend/internal/model/persona"
	speechmodel "github.com/museumai/kiosk/backend/internal/model/speech"
	"github.com/museumai/kiosk/backend/internal/service/ai"
	chatservice "github.com/museumai/kiosk/backend/internal/service/chat"
	speechservice "github.com/museumai/kiosk/backend/internal/service/speech"
)

type stubProvider struct {
	reply string
	err   error
	calls int
}

func (p *stubProvider) Complete(context.Context, string, []*schema.Message) (string, error) {
	p.calls++
	return p.reply, p.err
}

type stubSynthesizer struct {
	lastVoice string
}

func (s *stubSynthesizer) Name() string { return "stub" }

func (s *stubSynthesizer) Voices(context.Context) ([]speechmodel.Voice, error) {
	return []speechmodel.Voice{{ID: "voice-david", Name: "David"}}, nil
}

func (s *stubSynthesizer) Synthesize(_ context.Context, req speechmodel.SynthesisRequest) (*speechmodel.SynthesisResult, error) {
	s.lastVoice = req.VoiceID
	return &speechmodel.SynthesisResult{Audio: []byte("audio:" + req.Text), Format: "wav", MimeType: "audio/wav"}, nil
}

type fixture struct {
	router   *chi.Mux
	provider *stubProvider
	synth    *stubSynthesizer
	history  *chatservice.MemoryStore
}

func setupRouter(t *testing.T) *fixture {
	t.Helper()
	personas := persona.NewMemoryStore(persona.Seed())
	history := chatservice.NewMemoryStore(chatservice.DefaultMaxHistory)
	provider := &stubProvider{reply: "  Every body persists in its state of rest.  "}
	synth := &stubSynthesizer{}

	dialogue := ai.NewDialogueSession(personas, history, provider, ai.Options{})
	speechSvc := speechservice.NewService(context.Background(), synth, nil, nil, personas.List(), speechservice.ServiceOptions{})

	r := chi.NewRouter()
	New(dialogue, history, personas, speechSvc).RegisterRoutes(r)
	return &fixture{router: r, provider: provider, synth: synth, history: history}
}

func postRespond(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/respond", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", resp.Body.String(), err)
	}
	return body
}

func TestRespondReturnsTextAndAudio(t *testing.T) {
	f := setupRouter(t)

	resp := postRespond(f.router, `{"user_input":"What is inertia?","personality":"isaac_newton"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	body := decodeBody(t, resp)
	if body["ai_text"] != "Every body persists in its state of rest." {
		t.Fatalf("unexpected ai_text %v", body["ai_text"])
	}
	audio, err := base64.StdEncoding.DecodeString(body["audio"].(string))
	if err != nil {
		t.Fatalf("audio is not base64: %v", err)
	}
	if string(audio) != "audio:Every body persists in its state of rest." {
		t.Fatalf("unexpected audio %q", audio)
	}
	if f.synth.lastVoice != "voice-david" {
		t.Fatalf("expected bound voice, got %q", f.synth.lastVoice)
	}
}

func TestRespondMissingFields(t *testing.T) {
	f := setupRouter(t)

	for _, body := range []string{`{}`, `{"personality":"isaac_newton"}`, `{"user_input":"hi"}`, `not json`} {
		resp := postRespond(f.router, body)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, resp.Code)
		}
	}
	if f.provider.calls != 0 {
		t.Fatalf("provider must not be called, got %d calls", f.provider.calls)
	}
}

func TestRespondUnknownPersonality(t *testing.T) {
	f := setupRouter(t)

	resp := postRespond(f.router, `{"user_input":"hi","personality":"nikola_tesla"}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if body := decodeBody(t, resp); body["error"] != "Personality 'nikola_tesla' not found." {
		t.Fatalf("unexpected error %v", body["error"])
	}
}

func TestRespondUpstreamFailure(t *testing.T) {
	f := setupRouter(t)
	f.provider.err = &ai.UpstreamChatError{StatusCode: http.StatusInternalServerError, Detail: "overloaded"}

	resp := postRespond(f.router, `{"user_input":"hi","personality":"marie_curie"}`)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	body := decodeBody(t, resp)
	if body["error"] != "Error with AI response." || body["details"] == "" {
		t.Fatalf("unexpected body %v", body)
	}

	turns, _ := f.history.Snapshot(context.Background(), "marie_curie")
	if len(turns) != 1 {
		t.Fatalf("expected the user turn to be kept, got %d turns", len(turns))
	}
}

func TestRespondEmptyReply(t *testing.T) {
	f := setupRouter(t)
	f.provider.reply = "   "

	resp := postRespond(f.router, `{"user_input":"hi","personality":"marie_curie"}`)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if body := decodeBody(t, resp); body["error"] != "AI returned an empty response." {
		t.Fatalf("unexpected error %v", body["error"])
	}
}

func TestHistoryLifecycle(t *testing.T) {
	f := setupRouter(t)
	postRespond(f.router, `{"user_input":"Why do apples fall?","personality":"isaac_newton"}`)

	req := httptest.NewRequest(http.MethodGet, "/history/isaac_newton", nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var got historyResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if got.Personality != "isaac_newton" || len(got.History) != 2 {
		t.Fatalf("unexpected history %+v", got)
	}

	req = httptest.NewRequest(http.MethodDelete, "/history/isaac_newton", nil)
	resp = httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	turns, _ := f.history.Snapshot(context.Background(), "isaac_newton")
	if len(turns) != 0 {
		t.Fatalf("expected empty history after reset, got %d", len(turns))
	}
}

func TestHistoryUnknownPersonality(t *testing.T) {
	f := setupRouter(t)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		req := httptest.NewRequest(method, "/history/nikola_tesla", nil)
		resp := httptest.NewRecorder()
		f.router.ServeHTTP(resp, req)
		if resp.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", method, resp.Code)
		}
	}
}
