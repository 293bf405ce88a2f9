package protocol

import (
	"encoding/json"
	"fmt"
)

// Inbound event names
const (
	EventRequestRoom   = "requestRoom"
	EventRequestToJoin = "requestToJoin"
	EventPlayerReady   = "playerReady"
	EventLeaveRoom     = "leaveRoom"
	EventScoreUpdate   = "scoreUpdate"
	EventLetsPlayAgain = "letsPlayAgain"
	EventPingServer    = "pingServer"
)

// Frame is one JSON message on the socket: an event name and its
// positional arguments
type Frame struct {
	Event string            `json:"event"`
	Args  []json.RawMessage `json:"args"`
}

// NewFrame encodes an event and its arguments
func NewFrame(event string, args ...any) ([]byte, error) {
	raw := make([]json.RawMessage, len(args))
	for i, arg := range args {
		b, err := json.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("encode %s arg %d: %w", event, i, err)
		}
		raw[i] = b
	}
	return json.Marshal(Frame{Event: event, Args: raw})
}

// ParseFrame decodes a raw socket message
func ParseFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if f.Event == "" {
		return Frame{}, fmt.Errorf("%w: missing event name", ErrMalformedFrame)
	}
	return f, nil
}

// Arg decodes the i-th argument into v
func (f Frame) Arg(i int, v any) error {
	if i >= len(f.Args) {
		return fmt.Errorf("%w: %s needs at least %d args", ErrMalformedFrame, f.Event, i+1)
	}
	if err := json.Unmarshal(f.Args[i], v); err != nil {
		return fmt.Errorf("%w: %s arg %d: %v", ErrMalformedFrame, f.Event, i, err)
	}
	return nil
}
