package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/anagrams-go/internal/model"
	"github.com/mcoot/anagrams-go/internal/storage"
)

// ErrTxConflict is returned when an update keeps losing optimistic-lock races
var ErrTxConflict = errors.New("redis transaction conflict")

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, playerKey(player.ID), data, s.cfg.PlayerTTL).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return get[model.Player](ctx, s.client, playerKey(id), model.ErrPlayerNotFound)
}

func (s *Storage) UpdatePlayer(ctx context.Context, id model.PlayerID, fn storage.PlayerUpdate) (*model.Player, error) {
	return update(ctx, s, playerKey(id), model.ErrPlayerNotFound, s.cfg.PlayerTTL, func(p *model.Player) error {
		return fn(p)
	})
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	return s.client.Del(ctx, playerKey(id)).Err()
}

func (s *Storage) PlayerExists(ctx context.Context, id model.PlayerID) (bool, error) {
	exists, err := s.client.Exists(ctx, playerKey(id)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, roomKey(room.ID), data, s.cfg.RoomTTL)
	pipe.SAdd(ctx, roomIndexKey(), string(room.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return get[model.Room](ctx, s.client, roomKey(id), model.ErrRoomNotFound)
}

func (s *Storage) UpdateRoom(ctx context.Context, id model.RoomID, fn storage.RoomUpdate) (*model.Room, error) {
	return update(ctx, s, roomKey(id), model.ErrRoomNotFound, s.cfg.RoomTTL, func(r *model.Room) error {
		return fn(r)
	})
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, roomKey(id))
	pipe.SRem(ctx, roomIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	exists, err := s.client.Exists(ctx, roomKey(id)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// ListRoomIDs returns the indexed room IDs. Rooms that expired through TTL
// may still be listed; callers get ErrRoomNotFound when loading them.
func (s *Storage) ListRoomIDs(ctx context.Context) ([]model.RoomID, error) {
	members, err := s.client.SMembers(ctx, roomIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(members)

	ids := make([]model.RoomID, len(members))
	for i, m := range members {
		ids[i] = model.RoomID(m)
	}
	return ids, nil
}

// Clear deletes every key under the storage prefix
func (s *Storage) Clear(ctx context.Context) error {
	var keys []string
	iter := s.client.Scan(ctx, 0, allKeysPattern(), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func get[T any](ctx context.Context, client *redis.Client, key string, notFound error) (*T, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, err
	}
	return &value, nil
}

// update performs an optimistic read-modify-write on a JSON value using
// WATCH/MULTI, retrying when another client changed the key in between.
func update[T any](ctx context.Context, s *Storage, key string, notFound error, ttl time.Duration, fn func(*T) error) (*T, error) {
	var result *T

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return notFound
			}
			return err
		}

		var value T
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		if err := fn(&value); err != nil {
			return err
		}

		updated, err := json.Marshal(&value)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, ttl)
			return nil
		})
		if err == nil {
			result = &value
		}
		return err
	}

	retries := max(s.cfg.MaxTxRetries, 1)
	for range retries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, fmt.Errorf("update %s: %w", key, ErrTxConflict)
}
