package realtime

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/mcoot/anagrams-go/internal/model"
)

type membership struct {
	client *Client
	id     model.PlayerID
	done   chan struct{}
}

type delivery struct {
	event     model.Event
	skip      []model.PlayerID
	delivered chan struct{}
}

// Hub fans room events out to the room's connected clients
type Hub struct {
	roomID  model.RoomID
	clients map[model.PlayerID]*Client
	mu      sync.RWMutex
	logger  *slog.Logger

	register   chan membership
	unregister chan membership
	broadcast  chan delivery
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub for a room
func NewHub(roomID model.RoomID, logger *slog.Logger) *Hub {
	return &Hub{
		roomID:     roomID,
		clients:    make(map[model.PlayerID]*Client),
		logger:     logger.With(slog.String("room_id", string(roomID))),
		register:   make(chan membership),
		unregister: make(chan membership),
		broadcast:  make(chan delivery),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Debug("ws hub started")
	for {
		select {
		case r := <-h.register:
			h.mu.Lock()
			h.clients[r.client.id] = r.client
			clientCount := len(h.clients)
			h.mu.Unlock()
			close(r.done)
			h.logger.Debug("ws client subscribed",
				slog.String("player_id", string(r.client.id)),
				slog.Int("total_clients", clientCount))

		case r := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, r.id)
			clientCount := len(h.clients)
			h.mu.Unlock()
			close(r.done)
			h.logger.Debug("ws client unsubscribed",
				slog.String("player_id", string(r.id)),
				slog.Int("total_clients", clientCount))

		case d := <-h.broadcast:
			h.mu.RLock()
			sent := 0
			for id, client := range h.clients {
				if slices.Contains(d.skip, id) {
					continue
				}
				client.deliver(d.event)
				sent++
			}
			h.mu.RUnlock()
			close(d.delivered)
			h.logger.Debug("ws broadcast",
				slog.String("event", string(d.event.Type)),
				slog.Int("sent", sent))

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			clear(h.clients)
			h.mu.Unlock()
			h.logger.Debug("ws hub stopped", slog.Int("unsubscribed_clients", clientCount))
			return
		}
	}
}

// Register adds a client to the hub and waits until it is applied
func (h *Hub) Register(client *Client) {
	h.await(h.register, membership{client: client, done: make(chan struct{})})
}

// Unregister removes a client from the hub and waits until it is applied
func (h *Hub) Unregister(id model.PlayerID) {
	h.await(h.unregister, membership{id: id, done: make(chan struct{})})
}

func (h *Hub) await(ch chan membership, m membership) {
	select {
	case ch <- m:
	case <-h.done:
		return
	}
	select {
	case <-m.done:
	case <-h.done:
	}
}

// Broadcast queues an event for every client except the skipped ones.
// It returns once the event is queued, so events reach each client in
// the order they were sent.
func (h *Hub) Broadcast(event model.Event, skip ...model.PlayerID) {
	d := delivery{event: event, skip: skip, delivered: make(chan struct{})}
	select {
	case h.broadcast <- d:
	case <-h.done:
		return
	}
	select {
	case <-d.delivered:
	case <-h.done:
	}
}

// Close shuts down the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of subscribed clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Has reports whether the player is subscribed
func (h *Hub) Has(id model.PlayerID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[id]
	return ok
}
