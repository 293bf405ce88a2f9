package realtime

import (
	"log/slog"
	"sync"

	"github.com/mcoot/anagrams-go/internal/model"
)

// Manager tracks live connections and the per-room hubs they are
// subscribed to. It is the broadcast group and event emitter used by
// the session layer.
type Manager struct {
	mu      sync.RWMutex
	clients map[model.PlayerID]*Client
	hubs    map[model.RoomID]*Hub
	logger  *slog.Logger
}

// NewManager creates a new Manager
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		clients: make(map[model.PlayerID]*Client),
		hubs:    make(map[model.RoomID]*Hub),
		logger:  logger.With(slog.String("component", "ws")),
	}
}

// Attach makes a connection reachable by its player handle
func (m *Manager) Attach(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client.id] = client
}

// Detach forgets a connection and drops any subscriptions it still has
func (m *Manager) Detach(id model.PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, id)
	for roomID, hub := range m.hubs {
		if hub.Has(id) {
			hub.Unregister(id)
			m.removeIfEmpty(roomID, hub)
		}
	}
}

// Subscribe adds the player's connection to the room's broadcasts.
// Players without a live connection are ignored.
func (m *Manager) Subscribe(player model.PlayerID, room model.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, ok := m.clients[player]
	if !ok {
		m.logger.Debug("ws subscribe without connection",
			slog.String("player_id", string(player)),
			slog.String("room_id", string(room)))
		return
	}

	hub, ok := m.hubs[room]
	if !ok {
		hub = NewHub(room, m.logger)
		m.hubs[room] = hub
		go hub.Run()
	}
	hub.Register(client)
}

// Unsubscribe removes the player from the room's broadcasts. Hubs are
// closed once nobody is left in them.
func (m *Manager) Unsubscribe(player model.PlayerID, room model.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub, ok := m.hubs[room]
	if !ok {
		return
	}
	hub.Unregister(player)
	m.removeIfEmpty(room, hub)
}

func (m *Manager) removeIfEmpty(room model.RoomID, hub *Hub) {
	if hub.ClientCount() > 0 {
		return
	}
	hub.Close()
	delete(m.hubs, room)
	m.logger.Debug("ws hub removed", slog.String("room_id", string(room)))
}

// Send delivers an event to one connection
func (m *Manager) Send(to model.PlayerID, event model.Event) {
	m.mu.RLock()
	client, ok := m.clients[to]
	m.mu.RUnlock()
	if !ok {
		m.logger.Debug("ws send to unknown connection",
			slog.String("player_id", string(to)),
			slog.String("event", string(event.Type)))
		return
	}
	client.deliver(event)
}

// Broadcast delivers an event to everyone subscribed to the room,
// except the skipped players
func (m *Manager) Broadcast(room model.RoomID, event model.Event, skip ...model.PlayerID) {
	m.mu.RLock()
	hub, ok := m.hubs[room]
	m.mu.RUnlock()
	if !ok {
		return
	}
	hub.Broadcast(event, skip...)
}

// ConnectionCount returns the number of live connections
func (m *Manager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// ConnectionIDs returns the player handles of all live connections
func (m *Manager) ConnectionIDs() []model.PlayerID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]model.PlayerID, 0, len(m.clients))
	for id := range m.clients {
		ids = append(ids, id)
	}
	return ids
}

// HubCount returns the number of rooms with subscribers
func (m *Manager) HubCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hubs)
}

// Close stops every hub and closes every connection
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for room, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, room)
	}
	for _, client := range m.clients {
		client.close()
	}
	m.logger.Info("ws manager closed")
}
