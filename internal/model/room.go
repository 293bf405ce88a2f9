package model

import (
	"slices"
	"time"
)

// RoomID is the human-shareable code used to join a room
type RoomID string

// DefaultMaxPlayers is the capacity of rooms created by a room request
const DefaultMaxPlayers = 2

// Room is a bounded group of connections playing one match together
type Room struct {
	ID         RoomID
	MaxPlayers int
	Members    []PlayerID // Set semantics, join order
	Rounds     int        // Rounds started in this room
	CreatedAt  time.Time
}

// NewRoom creates an empty room
func NewRoom(id RoomID, maxPlayers int, createdAt time.Time) *Room {
	return &Room{
		ID:         id,
		MaxPlayers: maxPlayers,
		Members:    []PlayerID{},
		CreatedAt:  createdAt,
	}
}

// Size returns the number of members
func (r *Room) Size() int {
	return len(r.Members)
}

// IsFull returns true if no more members can join
func (r *Room) IsFull() bool {
	return r.Size() >= r.MaxPlayers
}

// IsEmpty returns true if the room has no members
func (r *Room) IsEmpty() bool {
	return r.Size() == 0
}

// Has returns true if the player is a member
func (r *Room) Has(id PlayerID) bool {
	return slices.Contains(r.Members, id)
}

// Add inserts a member. Returns false if already present.
func (r *Room) Add(id PlayerID) bool {
	if r.Has(id) {
		return false
	}
	r.Members = append(r.Members, id)
	return true
}

// Remove deletes a member. Returns false if not present.
func (r *Room) Remove(id PlayerID) bool {
	idx := slices.Index(r.Members, id)
	if idx < 0 {
		return false
	}
	r.Members = slices.Delete(r.Members, idx, idx+1)
	return true
}

// Others returns every member except the given player
func (r *Room) Others(id PlayerID) []PlayerID {
	others := make([]PlayerID, 0, len(r.Members))
	for _, m := range r.Members {
		if m != id {
			others = append(others, m)
		}
	}
	return others
}

// Clone returns a deep copy of the room
func (r *Room) Clone() *Room {
	c := *r
	c.Members = append([]PlayerID{}, r.Members...)
	return &c
}

// RoomState is the phase of a room, derived from its members
type RoomState string

const (
	RoomStateNotEnoughPlayers         RoomState = "NOT_ENOUGH_PLAYERS"
	RoomStateReadyToBegin             RoomState = "READY_TO_BEGIN"
	RoomStateWaitingForPlayersToReady RoomState = "WAITING_FOR_PLAYERS_TO_READY"
	RoomStateInGame                   RoomState = "IN_GAME"
)

// DeriveRoomState computes the state of a room from its members.
// It is informational only: session handling never branches on it.
func DeriveRoomState(room *Room, members []*Player) RoomState {
	if !room.IsFull() || len(members) < room.MaxPlayers {
		return RoomStateNotEnoughPlayers
	}

	ready := 0
	for _, p := range members {
		if p.IsReady {
			ready++
		}
	}

	switch {
	case ready == len(members):
		return RoomStateReadyToBegin
	case room.Rounds > 0:
		return RoomStateInGame
	default:
		return RoomStateWaitingForPlayersToReady
	}
}
