// Package wshub broadcasts the core's status messages to connected UI
// clients over websockets. It implements status.Sink; the core never
// imports this package.
package wshub

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Message is the wire envelope for one status broadcast.
type Message struct {
	Type  string   `json:"type"`
	Track string   `json:"track,omitempty"`
	Lines []string `json:"lines,omitempty"`
}

// Hub owns all live subscriber connections.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
}

// subscriber serializes writes to one connection.
type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// New creates an empty hub.
func New(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			// The control surface may be served from another origin during
			// development; the hub is one-way status, so this is safe.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subscribers: make(map[*subscriber]struct{}),
	}
}

// ServeHTTP upgrades a connection and keeps it subscribed until it drops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed.", "error", err)
		return
	}
	sub := &subscriber{conn: conn}

	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	count := len(h.subscribers)
	h.mu.Unlock()
	h.logger.Debug("Status subscriber connected.", "subscribers", count)

	// The hub never consumes client payloads; reading just detects the
	// close frame.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(sub)
				return
			}
		}
	}()
}

// drop removes a subscriber and closes its connection.
func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	delete(h.subscribers, sub)
	h.mu.Unlock()
	_ = sub.conn.Close()
}

// broadcast sends one message to every subscriber, dropping any that fail.
func (h *Hub) broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal status message.", "error", err)
		return
	}

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.mu.Lock()
		err := sub.conn.WriteMessage(websocket.TextMessage, payload)
		sub.mu.Unlock()
		if err != nil {
			h.logger.Debug("Dropping status subscriber after write failure.", "error", err)
			h.drop(sub)
		}
	}
}

// Ready implements status.Sink.
func (h *Hub) Ready(track string) {
	h.broadcast(Message{Type: "ready", Track: track})
}

// Debug implements status.Sink.
func (h *Hub) Debug(lines []string) {
	h.broadcast(Message{Type: "debug", Lines: lines})
}

// Close drops every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.subscribers = make(map[*subscriber]struct{})
	h.mu.Unlock()
	for _, sub := range subs {
		_ = sub.conn.Close()
	}
}
