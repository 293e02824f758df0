package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nerrad567/uav-groundstation/internal/infrastructure/config"
	"github.com/nerrad567/uav-groundstation/internal/infrastructure/logging"
)

// CurrentFunc returns the present value of an event channel, used to bring
// a fresh subscriber up to date. ok is false when there is nothing to send.
type CurrentFunc func(channel string) (payload any, ok bool)

// Hub tracks WebSocket clients and fans dashboard events out to the ones
// subscribed to each channel. Broadcast matches poller.Notifier.
type Hub struct {
	cfg     config.WebSocketConfig
	logger  *logging.Logger
	clients map[*WSClient]struct{}
	mu      sync.RWMutex

	current CurrentFunc
}

// NewHub creates a new WebSocket hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger.With("component", "websocket"),
		clients: make(map[*WSClient]struct{}),
	}
}

// SetCurrent installs the lookup used to replay state on subscribe.
func (h *Hub) SetCurrent(fn CurrentFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = fn
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a client to the hub.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", n)
}

// Unregister removes a client. Only the caller that actually removes it
// closes the send channel, so shutdown and disconnect cannot double-close.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	n := len(h.clients)
	h.mu.Unlock()

	if existed {
		close(client.send)
	}
	h.logger.Debug("websocket client disconnected", "clients", n)
}

// Broadcast sends an event to every client subscribed to channel. It never
// blocks: a client whose buffer is full misses the event.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := eventMessage(channel, payload)
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", "channel", channel, "error", err)
		return
	}

	// Snapshot the client list so no client lock is taken under the hub lock.
	h.mu.RLock()
	clients := make([]*WSClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	sent := 0
	for _, client := range clients {
		if client.isSubscribed(channel) {
			client.trySend(data)
			sent++
		}
	}
	if sent > 0 {
		h.logger.Debug("broadcast sent", "channel", channel, "recipients", sent)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// replay sends the current value of each channel to one client.
func (h *Hub) replay(client *WSClient, channels []string) {
	h.mu.RLock()
	current := h.current
	h.mu.RUnlock()
	if current == nil {
		return
	}

	for _, ch := range channels {
		payload, ok := current(ch)
		if !ok {
			continue
		}
		data, err := eventMessage(ch, payload)
		if err != nil {
			h.logger.Error("failed to marshal replay message", "channel", ch, "error", err)
			continue
		}
		client.trySend(data)
	}
}

// closeAll disconnects every client and closes its send channel so the
// write pumps exit.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		if client.conn != nil {
			client.conn.Close()
		}
		delete(h.clients, client)
	}
}

func eventMessage(channel string, payload any) ([]byte, error) {
	return json.Marshal(WSMessage{
		Type:      WSTypeEvent,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
}
