package protocol

import (
	"fmt"
	"strings"

	"github.com/mcoot/anagrams-go/internal/model"
	"github.com/mcoot/anagrams-go/internal/services/session"
)

var inboundKinds = map[string]session.Kind{
	EventRequestRoom:   session.KindRequestRoom,
	EventRequestToJoin: session.KindJoin,
	EventPlayerReady:   session.KindReady,
	EventLeaveRoom:     session.KindLeave,
	EventScoreUpdate:   session.KindScore,
	EventLetsPlayAgain: session.KindPlayAgain,
	EventPingServer:    session.KindPing,
}

// Decode turns a raw socket message from a connection into an inbound
// event. Connection lifecycle events cannot be sent over the wire.
func Decode(from model.PlayerID, data []byte) (session.Inbound, error) {
	f, err := ParseFrame(data)
	if err != nil {
		return session.Inbound{}, err
	}

	kind, ok := inboundKinds[f.Event]
	if !ok {
		return session.Inbound{}, fmt.Errorf("%w: %q", model.ErrUnknownEvent, f.Event)
	}
	in := session.Inbound{Kind: kind, From: from}

	switch kind {
	case session.KindJoin, session.KindReady, session.KindLeave, session.KindPlayAgain:
		var room string
		if err := f.Arg(0, &room); err != nil {
			return session.Inbound{}, err
		}
		room = strings.ToUpper(strings.TrimSpace(room))
		if room == "" {
			return session.Inbound{}, fmt.Errorf("%w: %s needs a room code", ErrMalformedFrame, f.Event)
		}
		in.Room = model.RoomID(room)

	case session.KindScore:
		if err := f.Arg(0, &in.Points); err != nil {
			return session.Inbound{}, err
		}
		if in.Points < 0 {
			return session.Inbound{}, fmt.Errorf("%w: negative score", ErrMalformedFrame)
		}
		if len(f.Args) > 1 {
			if err := f.Arg(1, &in.Words); err != nil {
				return session.Inbound{}, err
			}
		}
		if in.Words == nil {
			in.Words = []string{}
		}

	case session.KindPing:
		if err := f.Arg(0, &in.Timestamp); err != nil {
			return session.Inbound{}, err
		}
	}
	return in, nil
}
