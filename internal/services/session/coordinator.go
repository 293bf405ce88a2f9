package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/anagrams-go/internal/dependencies/clock"
	"github.com/mcoot/anagrams-go/internal/dependencies/random"
	"github.com/mcoot/anagrams-go/internal/model"
	"github.com/mcoot/anagrams-go/internal/services/players"
	"github.com/mcoot/anagrams-go/internal/services/rooms"
)

// DefaultWordLength is the length of the word each round is built from
const DefaultWordLength = 6

// Emitter delivers outbound events to connections
type Emitter interface {
	// Send delivers an event to a single connection
	Send(to model.PlayerID, event model.Event)
	// Broadcast delivers an event to every connection subscribed to the
	// room, except the skipped ones
	Broadcast(room model.RoomID, event model.Event, skip ...model.PlayerID)
}

// Provider supplies the word and valid answers for a round
type Provider interface {
	RandomWord(ctx context.Context, length int) (string, error)
	Anagrams(ctx context.Context, word string) ([]string, error)
}

// Config holds the game rules the coordinator applies
type Config struct {
	WordLength int
	MaxPlayers int
}

// DefaultConfig returns two-player rooms with six-letter words
func DefaultConfig() Config {
	return Config{
		WordLength: DefaultWordLength,
		MaxPlayers: model.DefaultMaxPlayers,
	}
}

// Coordinator drives rooms through their lifecycle in response to
// connection events
type Coordinator struct {
	players  *players.Registry
	rooms    *rooms.Registry
	provider Provider
	emitter  Emitter
	clock    clock.Clock
	random   random.Random
	cfg      Config
	logger   *slog.Logger

	locks *roomLocks

	// Rooms with a round start waiting on the provider
	startingMu sync.Mutex
	starting   map[model.RoomID]struct{}
}

// New creates a new Coordinator
func New(
	players *players.Registry,
	rooms *rooms.Registry,
	provider Provider,
	emitter Emitter,
	clock clock.Clock,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Coordinator {
	if cfg.WordLength <= 0 {
		cfg.WordLength = DefaultWordLength
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = model.DefaultMaxPlayers
	}
	return &Coordinator{
		players:  players,
		rooms:    rooms,
		provider: provider,
		emitter:  emitter,
		clock:    clock,
		random:   random,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "session")),
		locks:    newRoomLocks(),
		starting: make(map[model.RoomID]struct{}),
	}
}

// Dispatch routes an inbound event to its handler
func (c *Coordinator) Dispatch(ctx context.Context, in Inbound) error {
	switch in.Kind {
	case KindConnect:
		return c.Connect(ctx, in.From)
	case KindDisconnect:
		return c.Disconnect(ctx, in.From)
	case KindRequestRoom:
		return c.RequestRoom(ctx, in.From)
	case KindJoin:
		return c.Join(ctx, in.From, in.Room)
	case KindReady:
		return c.Ready(ctx, in.From, in.Room)
	case KindLeave:
		return c.Leave(ctx, in.From, in.Room)
	case KindScore:
		return c.UpdateScore(ctx, in.From, in.Points, in.Words)
	case KindPlayAgain:
		return c.PlayAgain(ctx, in.From, in.Room)
	case KindPing:
		return c.Ping(ctx, in.From, in.Timestamp)
	default:
		return fmt.Errorf("%w: kind %d", model.ErrUnknownEvent, in.Kind)
	}
}

// lockPlayerRoom locks the player's current room along with any extra
// rooms, retrying if the player moves while the locks are taken
func (c *Coordinator) lockPlayerRoom(ctx context.Context, id model.PlayerID, extra ...model.RoomID) (*model.Player, func(), error) {
	for {
		before, err := c.players.Get(ctx, id)
		if err != nil {
			return nil, nil, err
		}

		unlock := c.locks.lock(append([]model.RoomID{before.RoomID}, extra...)...)
		after, err := c.players.Get(ctx, id)
		if err != nil {
			unlock()
			return nil, nil, err
		}
		if after.RoomID == before.RoomID {
			return after, unlock, nil
		}
		unlock()
	}
}

func (c *Coordinator) claimRoundStart(room model.RoomID) bool {
	c.startingMu.Lock()
	defer c.startingMu.Unlock()
	if _, busy := c.starting[room]; busy {
		return false
	}
	c.starting[room] = struct{}{}
	return true
}

func (c *Coordinator) releaseRoundStart(room model.RoomID) {
	c.startingMu.Lock()
	defer c.startingMu.Unlock()
	delete(c.starting, room)
}
