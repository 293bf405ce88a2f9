package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/anagrams-go/internal/model"
	"github.com/mcoot/anagrams-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players map[model.PlayerID]*model.Player
	rooms   map[model.RoomID]*model.Room
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[model.PlayerID]*model.Player),
		rooms:   make(map[model.RoomID]*model.Room),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player.Clone()
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player.Clone(), nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, id model.PlayerID, fn storage.PlayerUpdate) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	updated := current.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	s.players[id] = updated
	return updated.Clone(), nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

func (s *Storage) PlayerExists(ctx context.Context, id model.PlayerID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.players[id]
	return ok, nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room.Clone()
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (s *Storage) UpdateRoom(ctx context.Context, id model.RoomID, fn storage.RoomUpdate) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	updated := current.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	s.rooms[id] = updated
	return updated.Clone(), nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[id]
	return ok, nil
}

func (s *Storage) ListRoomIDs(ctx context.Context) ([]model.RoomID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]model.RoomID, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Storage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = make(map[model.PlayerID]*model.Player)
	s.rooms = make(map[model.RoomID]*model.Room)
	return nil
}
