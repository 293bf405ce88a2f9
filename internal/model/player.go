package model

import "time"

// PlayerID identifies a single live connection. A new connection always
// gets a new ID, so a PlayerID is never reused.
type PlayerID string

// Player holds the per-connection game state
type Player struct {
	ID         PlayerID
	RoomID     RoomID   // Empty when not in a room
	Score      int      // Last score reported by the client
	WordsFound []string // Set semantics, in the order first reported
	IsReady    bool

	// Latency tracking, driven by transport-level pings
	LatencyMs     float64
	PendingPingAt *time.Time
}

// NewPlayer creates a player with no room and a clean game state
func NewPlayer(id PlayerID) *Player {
	return &Player{
		ID:         id,
		WordsFound: []string{},
	}
}

// Reset clears the round state. Room and latency are kept.
func (p *Player) Reset() {
	p.Score = 0
	p.WordsFound = []string{}
	p.IsReady = false
}

// InRoom returns true if the player is assigned to a room
func (p *Player) InRoom() bool {
	return p.RoomID != ""
}

// SetWords replaces the found words, dropping duplicates
func (p *Player) SetWords(words []string) {
	seen := make(map[string]struct{}, len(words))
	result := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		result = append(result, w)
	}
	p.WordsFound = result
}

// Clone returns a deep copy of the player
func (p *Player) Clone() *Player {
	c := *p
	c.WordsFound = append([]string{}, p.WordsFound...)
	if p.PendingPingAt != nil {
		t := *p.PendingPingAt
		c.PendingPingAt = &t
	}
	return &c
}
