package protocol

import (
	"fmt"
	"sort"

	"github.com/mcoot/anagrams-go/internal/model"
)

const (
	you      = "you"
	opponent = "opponent"
)

// Encode renders an outbound event as the recipient should see it.
// Scoreboards are framed from the recipient's point of view.
func Encode(recipient model.PlayerID, event model.Event) ([]byte, error) {
	name := string(event.Type)

	switch p := event.Payload.(type) {
	case nil:
		return NewFrame(name)
	case model.RoomCodePayload:
		return NewFrame(name, p.RoomID)
	case model.AcceptedPayload:
		return NewFrame(name, p.Accepted)
	case model.RoundDataPayload:
		return NewFrame(name, []any{p.Letters, p.Anagrams})
	case model.ScoreboardPayload:
		scores, words := frameScoreboard(recipient, p.Standings)
		return NewFrame(name, []any{scores, words})
	case model.PingPayload:
		return NewFrame(name, p.Timestamp)
	case model.ErrorPayload:
		return NewFrame(name, errorBody{Code: p.Code, Message: p.Message})
	default:
		return nil, fmt.Errorf("encode %s: unsupported payload %T", name, event.Payload)
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// frameScoreboard splits standings into "you" and "opponent" entries.
// With more than one other member the others are keyed by handle.
func frameScoreboard(recipient model.PlayerID, standings map[model.PlayerID]model.Standing) (map[string]int, map[string][]string) {
	scores := make(map[string]int, len(standings))
	words := make(map[string][]string, len(standings))

	if own, ok := standings[recipient]; ok {
		scores[you] = own.Score
		words[you] = nonNil(own.Words)
	}

	others := make([]model.PlayerID, 0, len(standings))
	for id := range standings {
		if id != recipient {
			others = append(others, id)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i] < others[j] })

	for _, id := range others {
		key := opponent
		if len(others) > 1 {
			key = string(id)
		}
		scores[key] = standings[id].Score
		words[key] = nonNil(standings[id].Words)
	}
	return scores, words
}

func nonNil(words []string) []string {
	if words == nil {
		return []string{}
	}
	return words
}
