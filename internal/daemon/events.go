package daemon

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"vidresolve/internal/extraction"
	"vidresolve/internal/logging"
	"vidresolve/internal/metrics"
	"vidresolve/internal/resolver"
)

// Event message types sent on /api/events.
const (
	EventAttempt = "attempt"
	EventState   = "state"
)

// Event is one message on the websocket feed.
type Event struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data"`
}

// AttemptEvent is the wire form of an extraction attempt.
type AttemptEvent struct {
	VideoID    string `json:"videoId"`
	Strategy   string `json:"strategy"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

type eventClient struct {
	hub  *EventHub
	conn *websocket.Conn
	send chan []byte
}

// EventHub fans attempt and state events out to websocket subscribers. It
// implements extraction.Observer; StatusListener adapts it to the resolver.
type EventHub struct {
	clients    map[*eventClient]struct{}
	count      atomic.Int32
	broadcast  chan []byte
	register   chan *eventClient
	unregister chan *eventClient
	done       chan struct{}
	logger     *slog.Logger
	now        func() time.Time
}

// NewEventHub returns a hub. Run must be started before clients connect.
func NewEventHub(logger *slog.Logger) *EventHub {
	return &EventHub{
		clients:    make(map[*eventClient]struct{}),
		broadcast:  make(chan []byte, 128),
		register:   make(chan *eventClient),
		unregister: make(chan *eventClient),
		done:       make(chan struct{}),
		logger:     logging.NewComponentLogger(logger, "events"),
		now:        time.Now,
	}
}

// Run serves the hub until Close.
func (h *EventHub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				_ = client.conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(2*time.Second),
				)
				h.drop(client)
			}
			h.logger.Debug("event hub stopped")
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.count.Add(1)
			metrics.EventSubscribers.Inc()
			h.logger.Debug("event subscriber connected", logging.Int("total", len(h.clients)))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Debug("event subscriber disconnected", logging.Int("total", len(h.clients)))
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow subscriber.
					h.drop(client)
				}
			}
		}
	}
}

func (h *EventHub) drop(client *eventClient) {
	delete(h.clients, client)
	close(client.send)
	h.count.Add(-1)
	metrics.EventSubscribers.Dec()
}

// Close disconnects every subscriber and stops Run.
func (h *EventHub) Close() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

// Subscribers reports the number of connected clients.
func (h *EventHub) Subscribers() int {
	return int(h.count.Load())
}

// Publish queues an event for every subscriber. Events are dropped when
// nobody listens or the queue is full.
func (h *EventHub) Publish(eventType string, data any) {
	if h.count.Load() == 0 {
		return
	}
	payload, err := json.Marshal(Event{Type: eventType, Time: h.now().UTC(), Data: data})
	if err != nil {
		h.logger.Error("event marshal failed", logging.Error(err))
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.done:
	default:
	}
}

func (h *EventHub) ObserveAttempt(a extraction.Attempt) {
	h.Publish(EventAttempt, AttemptEvent{
		VideoID:    a.VideoID,
		Strategy:   a.Strategy,
		Outcome:    string(a.Outcome),
		Error:      a.ErrorText(),
		DurationMs: a.Duration.Milliseconds(),
	})
}

// StatusListener publishes resolver transitions.
func (h *EventHub) StatusListener() resolver.Listener {
	return func(s resolver.Status) { h.Publish(EventState, s) }
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// ServeHTTP upgrades the request and registers the connection.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", logging.Error(err))
		return
	}
	client := &eventClient{hub: h, conn: conn, send: make(chan []byte, 64)}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}
	go client.writePump()
	go client.readPump()
}

func (c *eventClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only drains control frames; subscribers never send data.
func (c *eventClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
