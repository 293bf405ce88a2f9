package storage

import (
	"context"

	"github.com/mcoot/anagrams-go/internal/model"
)

// PlayerUpdate mutates a player in place. Returning an error aborts the update.
type PlayerUpdate func(p *model.Player) error

// RoomUpdate mutates a room in place. Returning an error aborts the update.
type RoomUpdate func(r *model.Room) error

// Storage defines the interface for session state.
// Values returned from Get methods are copies; changes must be written back
// with Save or Update.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	UpdatePlayer(ctx context.Context, id model.PlayerID, fn PlayerUpdate) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error
	PlayerExists(ctx context.Context, id model.PlayerID) (bool, error)

	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	UpdateRoom(ctx context.Context, id model.RoomID, fn RoomUpdate) (*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
	RoomExists(ctx context.Context, id model.RoomID) (bool, error)
	ListRoomIDs(ctx context.Context) ([]model.RoomID, error)

	// Clear removes all session state
	Clear(ctx context.Context) error
}
