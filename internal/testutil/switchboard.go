package testutil

import (
	"slices"
	"sync"

	"github.com/mcoot/anagrams-go/internal/model"
)

// Switchboard is an in-memory stand-in for the realtime transport.
// It tracks room subscriptions and records every event each player
// would have received.
type Switchboard struct {
	mu       sync.Mutex
	groups   map[model.RoomID][]model.PlayerID
	received map[model.PlayerID][]model.Event
}

// NewSwitchboard creates an empty Switchboard
func NewSwitchboard() *Switchboard {
	return &Switchboard{
		groups:   make(map[model.RoomID][]model.PlayerID),
		received: make(map[model.PlayerID][]model.Event),
	}
}

func (s *Switchboard) Subscribe(player model.PlayerID, room model.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.groups[room], player) {
		s.groups[room] = append(s.groups[room], player)
	}
}

func (s *Switchboard) Unsubscribe(player model.PlayerID, room model.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := slices.DeleteFunc(s.groups[room], func(p model.PlayerID) bool { return p == player })
	if len(members) == 0 {
		delete(s.groups, room)
		return
	}
	s.groups[room] = members
}

func (s *Switchboard) Send(to model.PlayerID, event model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received[to] = append(s.received[to], event)
}

func (s *Switchboard) Broadcast(room model.RoomID, event model.Event, skip ...model.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.groups[room] {
		if slices.Contains(skip, p) {
			continue
		}
		s.received[p] = append(s.received[p], event)
	}
}

// Received returns every event delivered to the player so far
func (s *Switchboard) Received(player model.PlayerID) []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.received[player])
}

// ReceivedTypes returns the types of every event delivered to the player
func (s *Switchboard) ReceivedTypes(player model.PlayerID) []model.EventType {
	events := s.Received(player)
	types := make([]model.EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

// Count returns how many events of the given type the player received
func (s *Switchboard) Count(player model.PlayerID, t model.EventType) int {
	n := 0
	for _, e := range s.Received(player) {
		if e.Type == t {
			n++
		}
	}
	return n
}

// Last returns the most recent event of the given type, if any
func (s *Switchboard) Last(player model.PlayerID, t model.EventType) (model.Event, bool) {
	events := s.Received(player)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == t {
			return events[i], true
		}
	}
	return model.Event{}, false
}

// Subscribers returns the players subscribed to the room
func (s *Switchboard) Subscribers(room model.RoomID) []model.PlayerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.groups[room])
}

// Clear forgets all recorded events but keeps subscriptions
func (s *Switchboard) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = make(map[model.PlayerID][]model.Event)
}
