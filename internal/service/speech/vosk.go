package speech

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/museumai/kiosk/backend/internal/logging"
)

// DefaultVoskURL is where vosk-server listens out of the box.
const DefaultVoskURL = "ws://localhost:2700"

// VoskRecognizer speaks the vosk-server WebSocket protocol: a config
// message, binary PCM frames each answered by a partial or final result,
// and an eof message answered by the last result.
type VoskRecognizer struct {
	url    string
	dialer *websocket.Dialer
}

type voskConfigMessage struct {
	Config struct {
		SampleRate int `json:"sample_rate"`
	} `json:"config"`
}

type voskResultMessage struct {
	Text    *string `json:"text,omitempty"`
	Partial *string `json:"partial,omitempty"`
}

var voskEOF = []byte(`{"eof" : 1}`)

// NewVoskRecognizer returns a client for the server at url.
func NewVoskRecognizer(url string, handshakeTimeout time.Duration) *VoskRecognizer {
	if url == "" {
		url = DefaultVoskURL
	}
	if handshakeTimeout <= 0 {
		handshakeTimeout = 10 * time.Second
	}
	return &VoskRecognizer{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

// NewSession dials the server and sends the sample rate configuration.
func (r *VoskRecognizer) NewSession(ctx context.Context, sampleRate int) (RecognizerSession, error) {
	header := http.Header{}
	connectID := uuid.NewString()
	header.Set("X-Connect-Id", connectID)

	conn, _, err := r.dialer.DialContext(ctx, r.url, header)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to %s: %v", ErrRecognizerUnavailable, r.url, err)
	}

	var cfg voskConfigMessage
	cfg.Config.SampleRate = sampleRate
	payload, err := sonic.Marshal(cfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to marshal vosk config: %w", err)
	}

	session := &voskSession{conn: conn, connectID: connectID}
	session.applyDeadline(ctx)
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: failed to send config: %v", ErrRecognizerUnavailable, err)
	}

	logging.For("asr").Debug().Str("connect_id", connectID).Int("sample_rate", sampleRate).Msg("vosk session opened")
	return session, nil
}

type voskSession struct {
	conn      *websocket.Conn
	connectID string
}

func (s *voskSession) Feed(ctx context.Context, chunk []byte) (RecognitionResult, error) {
	s.applyDeadline(ctx)
	if err := s.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
		return RecognitionResult{}, fmt.Errorf("failed to send audio chunk: %w", err)
	}
	msg, err := s.read()
	if err != nil {
		return RecognitionResult{}, err
	}
	if msg.Text != nil {
		return RecognitionResult{Finalized: true, Text: *msg.Text}, nil
	}
	if msg.Partial != nil {
		return RecognitionResult{Text: *msg.Partial}, nil
	}
	return RecognitionResult{}, nil
}

func (s *voskSession) Finalize(ctx context.Context) (string, error) {
	s.applyDeadline(ctx)
	if err := s.conn.WriteMessage(websocket.TextMessage, voskEOF); err != nil {
		return "", fmt.Errorf("failed to send eof: %w", err)
	}
	msg, err := s.read()
	if err != nil {
		return "", err
	}
	if msg.Text == nil {
		return "", nil
	}
	return *msg.Text, nil
}

func (s *voskSession) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return s.conn.Close()
}

func (s *voskSession) read() (voskResultMessage, error) {
	msgType, data, err := s.conn.ReadMessage()
	if err != nil {
		return voskResultMessage{}, fmt.Errorf("failed to read recognizer result: %w", err)
	}
	if msgType != websocket.TextMessage {
		return voskResultMessage{}, fmt.Errorf("unexpected recognizer message type %d", msgType)
	}

	var msg voskResultMessage
	if err := sonic.Unmarshal(data, &msg); err != nil {
		return voskResultMessage{}, fmt.Errorf("failed to decode recognizer result: %w", err)
	}
	return msg, nil
}

func (s *voskSession) applyDeadline(ctx context.Context) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	_ = s.conn.SetWriteDeadline(deadline)
	_ = s.conn.SetReadDeadline(deadline)
}
