// Package realtime tracks which users hold a live websocket and pushes
// notifications to them. The Hub is both the presence predicate and the
// immediate-delivery sink of the notification dispatcher.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pkordes/caravan-share/internal/domain"
)

// ErrOffline is returned by Deliver when the recipient has no live connection.
var ErrOffline = errors.New("user is offline")

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxInboundSize = 512
	sendBuffer     = 64
)

// Frame is the JSON envelope written to clients.
type Frame struct {
	Type      string         `json:"type"`
	Timestamp string         `json:"timestamp"`
	Data      domain.Message `json:"data"`
}

type client struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
}

// Hub owns every live connection, indexed by user. A user may hold several
// connections; they all receive each delivery.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*client]struct{}

	register   chan *client
	unregister chan *client
	done       chan struct{}
	onConnect  func(ctx context.Context, userID int64)

	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewHub creates a Hub accepting upgrades from allowedOrigins. Requests
// without an Origin header are always accepted.
func NewHub(allowedOrigins []string, log *slog.Logger) *Hub {
	h := &Hub{
		clients:    make(map[int64]map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		log:        log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(allowedOrigins, origin) {
				return true
			}
			log.Warn("rejected websocket from disallowed origin", "origin", origin)
			return false
		},
	}
	return h
}

// OnConnect sets a hook run in its own goroutine after each registration.
// It is used to flush messages queued while the user was offline.
// Call before Run.
func (h *Hub) OnConnect(fn func(ctx context.Context, userID int64)) {
	h.onConnect = fn
}

// Run processes registrations until ctx is done, then closes every client.
// Run must be called exactly once.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for userID, conns := range h.clients {
				for c := range conns {
					close(c.send)
				}
				delete(h.clients, userID)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			conns, ok := h.clients[c.userID]
			if !ok {
				conns = make(map[*client]struct{})
				h.clients[c.userID] = conns
			}
			conns[c] = struct{}{}
			h.mu.Unlock()
			h.log.Debug("websocket connected", "user_id", c.userID)
			if h.onConnect != nil {
				go h.onConnect(ctx, c.userID)
			}

		case c := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[c.userID]; ok {
				if _, ok := conns[c]; ok {
					close(c.send)
					delete(conns, c)
				}
				if len(conns) == 0 {
					delete(h.clients, c.userID)
				}
			}
			h.mu.Unlock()
			h.log.Debug("websocket disconnected", "user_id", c.userID)
		}
	}
}

// IsOnline reports whether userID holds at least one connection.
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// Online returns the ids of every connected user.
func (h *Hub) Online() []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]int64, 0, len(h.clients))
	for id := range h.clients {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Deliver pushes msg to every connection of its recipient. It fails with
// ErrOffline when there is none, and with an error when every connection's
// buffer is full; the caller then queues the message.
func (h *Hub) Deliver(_ context.Context, msg domain.Message) error {
	data, err := json.Marshal(Frame{
		Type:      "notification",
		Timestamp: msg.CreatedAt.UTC().Format(time.RFC3339),
		Data:      msg,
	})
	if err != nil {
		return fmt.Errorf("realtime.Hub.Deliver: marshal: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := h.clients[msg.UserID]
	if len(conns) == 0 {
		return ErrOffline
	}
	delivered := 0
	for c := range conns {
		select {
		case c.send <- data:
			delivered++
		default:
		}
	}
	if delivered == 0 {
		return fmt.Errorf("realtime.Hub.Deliver: user %d: send buffers full", msg.UserID)
	}
	return nil
}

// Serve upgrades the request and registers the connection for userID.
// Authentication happens before this is called.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID int64) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	c := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		hub:    h,
	}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump discards inbound frames; it exists to notice disconnects and
// answer pongs.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
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
