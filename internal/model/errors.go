package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Room errors
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrNotInRoom    = errors.New("player is not in room")

	// Round errors
	ErrRoundDataUnavailable = errors.New("round data unavailable")

	// Protocol errors
	ErrUnknownEvent = errors.New("unknown event")
)
