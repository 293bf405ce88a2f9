package players

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/anagrams-go/internal/model"
	"github.com/mcoot/anagrams-go/internal/storage"
)

// Registry tracks the game state of every live connection
type Registry struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new player Registry
func New(storage storage.Storage, logger *slog.Logger) *Registry {
	return &Registry{
		storage: storage,
		logger:  logger.With(slog.String("component", "players")),
	}
}

// Create registers a fresh player. An existing player with the same
// ID is left untouched.
func (r *Registry) Create(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	existing, err := r.storage.GetPlayer(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	player := model.NewPlayer(id)
	if err := r.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	r.logger.Debug("player created", slog.String("player_id", string(id)))
	return player, nil
}

// Exists reports whether the player is registered
func (r *Registry) Exists(ctx context.Context, id model.PlayerID) (bool, error) {
	return r.storage.PlayerExists(ctx, id)
}

// Get returns a copy of the player
func (r *Registry) Get(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return r.storage.GetPlayer(ctx, id)
}

// Delete removes the player. Deleting an unknown player is a no-op.
func (r *Registry) Delete(ctx context.Context, id model.PlayerID) error {
	if err := r.storage.DeletePlayer(ctx, id); err != nil {
		return err
	}
	r.logger.Debug("player deleted", slog.String("player_id", string(id)))
	return nil
}

// Reset clears the player's score, found words and ready flag
func (r *Registry) Reset(ctx context.Context, id model.PlayerID) error {
	_, err := r.storage.UpdatePlayer(ctx, id, func(p *model.Player) error {
		p.Reset()
		return nil
	})
	return err
}

// Update applies fn to the stored player atomically
func (r *Registry) Update(ctx context.Context, id model.PlayerID, fn storage.PlayerUpdate) (*model.Player, error) {
	return r.storage.UpdatePlayer(ctx, id, fn)
}

// AssignRoom points the player at a room. An empty room clears it.
func (r *Registry) AssignRoom(ctx context.Context, id model.PlayerID, room model.RoomID) error {
	_, err := r.storage.UpdatePlayer(ctx, id, func(p *model.Player) error {
		p.RoomID = room
		return nil
	})
	return err
}

// GetMany loads the given players, skipping any that no longer exist
func (r *Registry) GetMany(ctx context.Context, ids []model.PlayerID) ([]*model.Player, error) {
	result := make([]*model.Player, 0, len(ids))
	for _, id := range ids {
		p, err := r.storage.GetPlayer(ctx, id)
		if errors.Is(err, model.ErrPlayerNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}
