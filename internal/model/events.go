package model

// EventType identifies an outbound event
type EventType string

const (
	// Room lifecycle events
	EventRequestRoomResponse   EventType = "requestRoomResponse"
	EventResponseRequestToJoin EventType = "responseRequestToJoin"
	EventGameReady             EventType = "gameReady"
	EventOpponentLeft          EventType = "opponentLeft"

	// Readiness events
	EventPlayerReadyResponse      EventType = "playerReadyResponse"
	EventOpponentReady            EventType = "opponentReady"
	EventOpponentWantsToPlayAgain EventType = "opponentWantsToPlayAgain"
	EventResetAndGetReady         EventType = "resetAndGetReady"

	// Round events
	EventDataReady        EventType = "dataReady"
	EventScoreboardUpdate EventType = "scoreboardUpdate"

	// Connection events
	EventPingFromServer EventType = "pingFromServer"
	EventError          EventType = "error"
)

// Event is an outbound message to one connection or a room
type Event struct {
	Type    EventType
	Payload any // Type-specific data, nil for signal-only events
}

// NewEvent creates an event with a payload
func NewEvent(t EventType, payload any) Event {
	return Event{Type: t, Payload: payload}
}

// Signal creates an event without a payload
func Signal(t EventType) Event {
	return Event{Type: t}
}

// RoomCodePayload carries the code of a newly created room
type RoomCodePayload struct {
	RoomID RoomID
}

// AcceptedPayload carries a yes/no answer to a request
type AcceptedPayload struct {
	Accepted bool
}

// Standing is one player's entry on the scoreboard
type Standing struct {
	Score int
	Words []string
}

// ScoreboardPayload maps every room member to their standing.
// Framing it as "you" and "opponent" is up to the wire encoder.
type ScoreboardPayload struct {
	Standings map[PlayerID]Standing
}

// RoundDataPayload carries the letters and valid words for a round
type RoundDataPayload struct {
	Letters  []string // One single-character string per tile, shuffled
	Anagrams []string
}

// PingPayload echoes a client timestamp
type PingPayload struct {
	Timestamp float64
}

// ErrorPayload reports a failed request back to the client
type ErrorPayload struct {
	Code    string
	Message string
}
