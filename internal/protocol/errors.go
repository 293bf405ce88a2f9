package protocol

import (
	"errors"

	"github.com/mcoot/anagrams-go/internal/model"
)

// ErrMalformedFrame is returned for messages that cannot be decoded
var ErrMalformedFrame = errors.New("malformed frame")

// Error codes sent to clients
const (
	CodePlayerNotFound       = "PLAYER_NOT_FOUND"
	CodeRoomNotFound         = "ROOM_NOT_FOUND"
	CodeRoomFull             = "ROOM_FULL"
	CodeNotInRoom            = "NOT_IN_ROOM"
	CodeRoundDataUnavailable = "ROUND_DATA_UNAVAILABLE"
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeInternalError        = "INTERNAL_ERROR"
)

// ErrorEvent converts a handler failure into an error event for the
// client that caused it
func ErrorEvent(err error) model.Event {
	return model.NewEvent(model.EventError, toErrorPayload(err))
}

func toErrorPayload(err error) model.ErrorPayload {
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return model.ErrorPayload{Code: CodePlayerNotFound, Message: "Player not found"}
	case errors.Is(err, model.ErrRoomNotFound):
		return model.ErrorPayload{Code: CodeRoomNotFound, Message: "Room not found"}
	case errors.Is(err, model.ErrRoomFull):
		return model.ErrorPayload{Code: CodeRoomFull, Message: "Room is full"}
	case errors.Is(err, model.ErrNotInRoom):
		return model.ErrorPayload{Code: CodeNotInRoom, Message: "Not in this room"}
	case errors.Is(err, model.ErrRoundDataUnavailable):
		return model.ErrorPayload{Code: CodeRoundDataUnavailable, Message: "Could not load a word for the round, ready up to try again"}
	case errors.Is(err, ErrMalformedFrame):
		return model.ErrorPayload{Code: CodeInvalidRequest, Message: err.Error()}
	case errors.Is(err, model.ErrUnknownEvent):
		return model.ErrorPayload{Code: CodeInvalidRequest, Message: err.Error()}
	default:
		return model.ErrorPayload{Code: CodeInternalError, Message: "Internal server error"}
	}
}
