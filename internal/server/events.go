package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second

	// clientBuffer is the number of events queued per client before new
	// events are dropped for it.
	clientBuffer = 64
)

// Event types sent on the /events stream.
const (
	EventStatus       = "status"
	EventRunStarted   = "run_started"
	EventDocument     = "document"
	EventRunCompleted = "run_completed"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is a message sent over the event stream.
type Event struct {
	Type    string `json:"type"`
	Time    string `json:"time"`
	Payload any    `json:"payload,omitempty"`
}

// DocumentEvent describes one finished document.
type DocumentEvent struct {
	RunID      string `json:"run_id,omitempty"`
	Path       string `json:"path"`
	Pages      int    `json:"pages"`
	Lines      int    `json:"lines"`
	Skipped    int    `json:"skipped"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

type client struct {
	send chan []byte
}

// Hub fans events out to connected clients. A slow client loses events
// instead of blocking the run.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

func (h *Hub) register() *client {
	c := &client{send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues ev for every connected client.
func (h *Hub) Broadcast(ev Event) {
	data, err := encodeEvent(ev)
	if err != nil {
		slog.Error("Failed to marshal event", "type", ev.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			websocketMessagesTotal.WithLabelValues("dropped").Inc()
		}
	}
}

func newEvent(typ string, payload any) Event {
	return Event{Type: typ, Time: time.Now().UTC().Format(time.RFC3339Nano), Payload: payload}
}

func encodeEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}

// sendEvent writes a single event to conn.
func sendEvent(conn WebSocketConnWriter, ev Event) error {
	data, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
	return nil
}

// eventsHandler streams run events to a WebSocket client. The first message
// is a status snapshot.
func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	c := s.hub.register()
	defer s.hub.unregister(c)

	slog.Info("WebSocket client connected", "remote_addr", clientIP(r))

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := sendEvent(conn, newEvent(EventStatus, s.Status())); err != nil {
		return
	}
	s.streamEvents(conn, c)
}

// streamEvents writes queued events and keepalive pings until the client
// goes away.
func (s *Server) streamEvents(conn *websocket.Conn, c *client) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		readUntilClosed(conn)
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
			websocketMessagesTotal.WithLabelValues("sent").Inc()
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// readUntilClosed discards client messages so control frames are handled.
func readUntilClosed(conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("WebSocket closed", "error", err)
			}
			return
		}
	}
}
