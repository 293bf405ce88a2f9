package response

import (
	"time"

	"github.com/mcoot/anagrams-go/internal/model"
	"github.com/mcoot/anagrams-go/internal/services/session"
)

// Health is the response for the health endpoint
type Health struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Rooms       int    `json:"rooms"`
}

// Member represents a room member in API responses
type Member struct {
	ID         string   `json:"id"`
	Score      int      `json:"score"`
	WordsFound []string `json:"words_found"`
	IsReady    bool     `json:"is_ready"`
	LatencyMs  float64  `json:"latency_ms"`
}

// MemberFromModel converts a model.Player to a response Member
func MemberFromModel(p *model.Player) Member {
	words := p.WordsFound
	if words == nil {
		words = []string{}
	}
	return Member{
		ID:         string(p.ID),
		Score:      p.Score,
		WordsFound: words,
		IsReady:    p.IsReady,
		LatencyMs:  p.LatencyMs,
	}
}

// Room represents a room in API responses
type Room struct {
	Code       string    `json:"code"`
	State      string    `json:"state"`
	MaxPlayers int       `json:"max_players"`
	Rounds     int       `json:"rounds"`
	Members    []Member  `json:"members"`
	CreatedAt  time.Time `json:"created_at"`
	JoinURL    string    `json:"join_url,omitempty"`
}

// RoomFromInfo converts a room snapshot. Members are listed in join order.
func RoomFromInfo(info *session.RoomInfo, joinURL string) Room {
	members := make([]Member, len(info.Members))
	for i, p := range info.Members {
		members[i] = MemberFromModel(p)
	}
	return Room{
		Code:       string(info.Room.ID),
		State:      string(info.State),
		MaxPlayers: info.Room.MaxPlayers,
		Rounds:     info.Room.Rounds,
		Members:    members,
		CreatedAt:  info.Room.CreatedAt,
		JoinURL:    joinURL,
	}
}
