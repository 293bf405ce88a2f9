package session

import "github.com/mcoot/anagrams-go/internal/model"

// Kind identifies an inbound event
type Kind int

const (
	KindConnect Kind = iota + 1
	KindDisconnect
	KindRequestRoom
	KindJoin
	KindReady
	KindLeave
	KindScore
	KindPlayAgain
	KindPing
)

var kindNames = map[Kind]string{
	KindConnect:     "connect",
	KindDisconnect:  "disconnect",
	KindRequestRoom: "requestRoom",
	KindJoin:        "requestToJoin",
	KindReady:       "playerReady",
	KindLeave:       "leaveRoom",
	KindScore:       "scoreUpdate",
	KindPlayAgain:   "letsPlayAgain",
	KindPing:        "pingServer",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Inbound is one event received from a connection. Only the fields
// relevant to Kind are set.
type Inbound struct {
	Kind Kind
	From model.PlayerID

	Room      model.RoomID // Join, Ready, Leave, PlayAgain
	Points    int          // Score
	Words     []string     // Score
	Timestamp float64      // Ping
}
