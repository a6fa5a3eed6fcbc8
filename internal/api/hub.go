/*
Package api
File: hub.go
Description:
    The WebSocket Hub pushes game events (day advanced, action applied,
    game over, saves) to every connected dashboard.

    It maintains a registry of active clients and a broadcast channel.
    Inbound messages are decoded and handed to the OnMessage hook; the
    server uses it to save when a client reports its page went hidden.

    Architecture:
    - Hub: one per server, run with `go hub.Run(ctx)`.
    - Client: one browser connection.
    - ServeWs: upgrades a GET request to a WebSocket.
*/

package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/everforgeworks/farm-navigators/internal/metrics"
	"github.com/gorilla/websocket"
)

// Message is the JSON envelope for all real-time communication.
type Message struct {
	Type    string `json:"type"`    // Event type (e.g. "day_advanced", "game_over")
	Payload any    `json:"payload"` // The actual data
	Sender  string `json:"sender"`  // "system" for server events
}

// ClientMessage is what a browser may send us.
type ClientMessage struct {
	Type  string `json:"type"`  // "visibility" is the only one acted on
	State string `json:"state"` // "hidden" or "visible"
}

// Client represents a single connected browser tab.
type Client struct {
	hub  *Hub            // Reference to the central Hub
	conn *websocket.Conn // The low-level WebSocket connection
	send chan []byte     // Buffered channel for outbound messages
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients map[*Client]bool

	// Broadcast takes pre-encoded messages; prefer Publish.
	Broadcast chan []byte

	register   chan *Client
	unregister chan *Client
	done       chan struct{} // Closed when Run returns

	// OnMessage is called from the client read loop for every decoded
	// inbound message. It must be set before Run.
	OnMessage func(ClientMessage)

	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHub creates a Hub. Run must be started before clients connect.
func NewHub(logger *slog.Logger, m *metrics.Metrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		Broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		log:        logger,
		metrics:    m,
	}
}

// Run is the event loop of the Hub. It returns when ctx is cancelled,
// closing every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
				h.metrics.ClientDisconnected()
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.metrics.ClientConnected()
			h.log.Debug("ws client registered", "clients", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.metrics.ClientDisconnected()
			}

		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Send buffer full: assume the client hung.
					close(client.send)
					delete(h.clients, client)
					h.metrics.ClientDisconnected()
				}
			}
		}
	}
}

// Publish encodes an event and queues it for broadcast. It never blocks the
// caller: when the queue is full the event is dropped.
func (h *Hub) Publish(eventType string, payload any) {
	if h == nil {
		return
	}
	data, err := json.Marshal(Message{Type: eventType, Payload: payload, Sender: "system"})
	if err != nil {
		h.log.Error("ws encode failed", "type", eventType, "error", err)
		return
	}
	select {
	case h.Broadcast <- data:
	default:
		h.log.Warn("ws broadcast queue full, event dropped", "type", eventType)
	}
}

// upgrader allows any origin, matching the permissive CORS policy of the API.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxInbound = 4096
)

// ServeWs upgrades the HTTP connection and starts the client pumps.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Warn("ws upgrade failed", "error", err)
		return
	}

	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256)}
	select {
	case hub.register <- client:
	case <-hub.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump decodes inbound messages and forwards them to OnMessage.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxInbound)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("ws read failed", "error", err)
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.hub.log.Debug("ws ignored malformed message", "error", err)
			continue
		}
		if c.hub.OnMessage != nil {
			c.hub.OnMessage(msg)
		}
	}
}

// writePump drains the send channel onto the socket and keeps the connection alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
