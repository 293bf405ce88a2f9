package rooms

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/anagrams-go/internal/dependencies/clock"
	"github.com/mcoot/anagrams-go/internal/model"
	"github.com/mcoot/anagrams-go/internal/services/codegen"
	"github.com/mcoot/anagrams-go/internal/storage"
)

// Groups manages transport-level broadcast subscriptions
type Groups interface {
	Subscribe(player model.PlayerID, room model.RoomID)
	Unsubscribe(player model.PlayerID, room model.RoomID)
}

// Registry owns room lifecycle and membership
type Registry struct {
	storage storage.Storage
	codes   *codegen.Generator
	groups  Groups
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new room Registry
func New(
	storage storage.Storage,
	codes *codegen.Generator,
	groups Groups,
	clock clock.Clock,
	logger *slog.Logger,
) *Registry {
	return &Registry{
		storage: storage,
		codes:   codes,
		groups:  groups,
		clock:   clock,
		logger:  logger.With(slog.String("component", "rooms")),
	}
}

// CreateRoom stores a new empty room under a code no live room uses
func (r *Registry) CreateRoom(ctx context.Context, maxPlayers int) (*model.Room, error) {
	if maxPlayers <= 0 {
		maxPlayers = model.DefaultMaxPlayers
	}

	code, err := r.codes.UniqueCodeFunc(ctx, func(ctx context.Context, code string) (bool, error) {
		return r.storage.RoomExists(ctx, model.RoomID(code))
	})
	if err != nil {
		return nil, err
	}

	room := model.NewRoom(model.RoomID(code), maxPlayers, r.clock.Now())
	if err := r.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	r.logger.Info("room created",
		slog.String("room_id", code),
		slog.Int("max_players", maxPlayers),
	)
	return room, nil
}

// GetRoom returns a copy of the room
func (r *Registry) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return r.storage.GetRoom(ctx, id)
}

// IsValid reports whether the room exists
func (r *Registry) IsValid(ctx context.Context, id model.RoomID) (bool, error) {
	return r.storage.RoomExists(ctx, id)
}

// IsFull reports whether the room has reached capacity
func (r *Registry) IsFull(ctx context.Context, id model.RoomID) (bool, error) {
	room, err := r.storage.GetRoom(ctx, id)
	if err != nil {
		return false, err
	}
	return room.IsFull(), nil
}

// AssignPlayer adds the player to the room and subscribes their
// connection to its broadcasts. Already being a member is a no-op.
func (r *Registry) AssignPlayer(ctx context.Context, player model.PlayerID, id model.RoomID) (*model.Room, error) {
	added := false
	room, err := r.storage.UpdateRoom(ctx, id, func(room *model.Room) error {
		if room.Has(player) {
			return nil
		}
		if room.IsFull() {
			return model.ErrRoomFull
		}
		added = room.Add(player)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if added {
		r.groups.Subscribe(player, id)
		r.logger.Debug("player joined room",
			slog.String("room_id", string(id)),
			slog.String("player_id", string(player)),
			slog.Int("size", room.Size()),
		)
	}
	return room, nil
}

// RemovePlayer takes the player out of the room and its broadcasts.
// The room is deleted if this removal emptied it. Returns false when
// the player was not a member or the room no longer exists.
func (r *Registry) RemovePlayer(ctx context.Context, player model.PlayerID, id model.RoomID) (bool, error) {
	removed := false
	room, err := r.storage.UpdateRoom(ctx, id, func(room *model.Room) error {
		removed = room.Remove(player)
		return nil
	})
	if errors.Is(err, model.ErrRoomNotFound) {
		r.groups.Unsubscribe(player, id)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	r.groups.Unsubscribe(player, id)
	if !removed {
		return false, nil
	}

	r.logger.Debug("player left room",
		slog.String("room_id", string(id)),
		slog.String("player_id", string(player)),
		slog.Int("size", room.Size()),
	)

	if room.IsEmpty() {
		if err := r.storage.DeleteRoom(ctx, id); err != nil {
			return true, err
		}
		r.logger.Info("room deleted", slog.String("room_id", string(id)))
	}
	return true, nil
}

// RemovePlayerFromAllRooms removes the player from every room that
// lists them. Returns the rooms they were removed from.
func (r *Registry) RemovePlayerFromAllRooms(ctx context.Context, player model.PlayerID) ([]model.RoomID, error) {
	ids, err := r.storage.ListRoomIDs(ctx)
	if err != nil {
		return nil, err
	}

	var left []model.RoomID
	for _, id := range ids {
		room, err := r.storage.GetRoom(ctx, id)
		if errors.Is(err, model.ErrRoomNotFound) {
			continue
		}
		if err != nil {
			return left, err
		}
		if !room.Has(player) {
			continue
		}

		removed, err := r.RemovePlayer(ctx, player, id)
		if err != nil {
			return left, err
		}
		if removed {
			left = append(left, id)
		}
	}
	return left, nil
}

// RecordRound counts a started round against the room
func (r *Registry) RecordRound(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return r.storage.UpdateRoom(ctx, id, func(room *model.Room) error {
		room.Rounds++
		return nil
	})
}

// List returns the codes of all live rooms
func (r *Registry) List(ctx context.Context) ([]model.RoomID, error) {
	return r.storage.ListRoomIDs(ctx)
}
