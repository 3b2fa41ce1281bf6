package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// DefaultWebSocketURL is the default WebSocket endpoint.
const DefaultWebSocketURL = "wss://api.openai.com/v1/realtime"

// WebSocketTransport carries the event protocol over a WebSocket connection
// for environments without WebRTC. Audio arrives only through data events;
// there is no media track, so the microphone gate has no effect.
type WebSocketTransport struct {
	cfg WebSocketConfig

	mu   sync.Mutex
	conn *websocket.Conn

	open      atomic.Bool
	closed    chan struct{}
	closeOnce sync.Once
}

// WebSocketConfig configures a WebSocket transport.
type WebSocketConfig struct {
	// URL is the WebSocket endpoint. Default: DefaultWebSocketURL.
	URL string

	// Model selects the agent model. Default: DefaultModel.
	Model string

	// Handler receives every parsed inbound event. Required.
	Handler Handler

	// OnOpen is called once the connection is established.
	OnOpen func()

	// OnClose is called when the read loop ends.
	OnClose func()
}

// NewWebSocketTransport creates an unconnected WebSocket transport.
func NewWebSocketTransport(cfg WebSocketConfig) *WebSocketTransport {
	if cfg.URL == "" {
		cfg.URL = DefaultWebSocketURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &WebSocketTransport{
		cfg:    cfg,
		closed: make(chan struct{}),
	}
}

// Connect dials the realtime endpoint with the session credential.
func (t *WebSocketTransport) Connect(ctx context.Context, credential string) error {
	t.mu.Lock()
	if t.conn != nil {
		t.mu.Unlock()
		return fmt.Errorf("realtime: transport already connected")
	}
	t.mu.Unlock()

	url := fmt.Sprintf("%s?model=%s", t.cfg.URL, t.cfg.Model)

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+credential)
	headers.Set("OpenAI-Beta", "realtime=v1")

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, headers)
	if err != nil {
		if resp != nil {
			return &Error{
				Code:       "connection_failed",
				Message:    fmt.Sprintf("failed to connect: %v", err),
				HTTPStatus: resp.StatusCode,
			}
		}
		return fmt.Errorf("realtime: failed to connect: %w", err)
	}

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	t.open.Store(true)

	if t.cfg.OnOpen != nil {
		t.cfg.OnOpen()
	}

	go t.readLoop(conn)

	return nil
}

// Send marshals the event and writes it to the connection. It fails with
// ErrNotReady when the connection is not open.
func (t *WebSocketTransport) Send(event interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil || !t.open.Load() {
		return ErrNotReady
	}

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		if jsonBytes, err := json.Marshal(event); err == nil {
			str := string(jsonBytes)
			if len(str) > 500 {
				str = str[:500] + "..."
			}
			slog.Debug("sending event", "content", str)
		}
	}

	return t.conn.WriteJSON(event)
}

// SetRecording is a no-op: the WebSocket transport carries no media track.
func (t *WebSocketTransport) SetRecording(enabled bool) {
	slog.Debug("recording toggle ignored on websocket transport", "enabled", enabled)
}

// Close closes the connection. It is idempotent.
func (t *WebSocketTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closed)
		t.open.Store(false)

		t.mu.Lock()
		conn := t.conn
		t.conn = nil
		t.mu.Unlock()

		if conn != nil {
			err = conn.Close()
		}
	})
	return err
}

// readLoop reads events from the connection until it fails or the transport
// closes.
func (t *WebSocketTransport) readLoop(conn *websocket.Conn) {
	defer func() {
		t.open.Store(false)
		if t.cfg.OnClose != nil {
			t.cfg.OnClose()
		}
	}()

	for {
		select {
		case <-t.closed:
			return
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-t.closed:
			default:
				slog.Error("websocket read failed", "error", err)
			}
			return
		}

		event, err := parseEvent(message)
		if err != nil {
			slog.Error("failed to parse inbound event", "error", err)
			continue
		}
		t.cfg.Handler(event)
	}
}
