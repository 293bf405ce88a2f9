package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/anagrams-go/internal/config"
	"github.com/mcoot/anagrams-go/internal/dependencies/clock"
	"github.com/mcoot/anagrams-go/internal/dependencies/random"
	"github.com/mcoot/anagrams-go/internal/realtime"
	"github.com/mcoot/anagrams-go/internal/services/codegen"
	"github.com/mcoot/anagrams-go/internal/services/players"
	"github.com/mcoot/anagrams-go/internal/services/rooms"
	"github.com/mcoot/anagrams-go/internal/services/session"
	"github.com/mcoot/anagrams-go/internal/services/words"
	"github.com/mcoot/anagrams-go/internal/storage"
	"github.com/mcoot/anagrams-go/internal/storage/memory"
	redisstorage "github.com/mcoot/anagrams-go/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock    clock.Clock
	Random   random.Random
	Provider session.Provider

	// Services
	Codes       *codegen.Generator
	Players     *players.Registry
	Rooms       *rooms.Registry
	Coordinator *session.Coordinator

	// Transport
	Connections *realtime.Manager
	Realtime    *realtime.Handler

	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger

	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config

	// WordsSource selects the round data provider ("api" or "dictionary")
	// If empty, defaults to "api"
	WordsSource      string
	WordsAPIURL      string
	DictionaryPath   string
	RoundDataTimeout time.Duration

	Session  session.Config
	Realtime realtime.Config
}

// ConfigFrom maps the server configuration onto the factory configuration
func ConfigFrom(cfg *config.Config, logger *slog.Logger) Config {
	fc := Config{
		Logger:           logger,
		StorageType:      cfg.StorageType,
		WordsSource:      cfg.WordsSource,
		WordsAPIURL:      cfg.WordsAPIURL,
		DictionaryPath:   cfg.DictionaryPath,
		RoundDataTimeout: cfg.RoundDataTimeout,
		Session: session.Config{
			WordLength: cfg.WordLength,
			MaxPlayers: cfg.MaxPlayers,
		},
		Realtime: realtime.Config{
			PingPeriod: cfg.PingPeriod,
		},
	}
	if cfg.StorageType == config.StorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		fc.RedisConfig = &redisCfg
	}
	return fc
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var closers []func() error

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageMemory
	}

	switch storageType {
	case config.StorageMemory:
		store = memory.New()
	case config.StorageRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore.Close)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	provider, err := newProvider(cfg, rnd, logger)
	if err != nil {
		for _, c := range closers {
			_ = c()
		}
		return nil, err
	}

	app := newWithDependencies(store, clk, rnd, provider, cfg, logger)
	app.closers = append(app.closers, closers...)
	return app, nil
}

func newProvider(cfg Config, rnd random.Random, logger *slog.Logger) (session.Provider, error) {
	source := cfg.WordsSource
	if source == "" {
		source = config.WordsFromAPI
	}

	switch source {
	case config.WordsFromAPI:
		if cfg.WordsAPIURL == "" {
			return nil, errors.New("WordsAPIURL required when WordsSource is api")
		}
		return words.NewAPIClient(cfg.WordsAPIURL, cfg.RoundDataTimeout, rnd, logger), nil
	case config.WordsFromDictionary:
		dict := words.NewDictionary(rnd)
		if err := dict.LoadFromFile(cfg.DictionaryPath); err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
		logger.Info("dictionary loaded",
			slog.String("path", cfg.DictionaryPath),
			slog.Int("words", dict.WordCount()),
		)
		return dict, nil
	default:
		return nil, errors.New("invalid WordsSource: must be 'api' or 'dictionary'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	provider session.Provider,
	cfg Config,
	logger *slog.Logger,
) *App {
	manager := realtime.NewManager(logger)
	codes := codegen.NewDefault(rnd)
	playerRegistry := players.New(store, logger)
	roomRegistry := rooms.New(store, codes, manager, clk, logger)
	coordinator := session.New(playerRegistry, roomRegistry, provider, manager, clk, rnd, cfg.Session, logger)
	handler := realtime.NewHandler(manager, coordinator, cfg.Realtime, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Provider:    provider,
		Codes:       codes,
		Players:     playerRegistry,
		Rooms:       roomRegistry,
		Coordinator: coordinator,
		Connections: manager,
		Realtime:    handler,
	}
}

// Reset clears leftover session state. Nothing survives a restart, so
// stale Redis keys from a previous process are dropped.
func (a *App) Reset(ctx context.Context) error {
	if err := a.Storage.Clear(ctx); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	return nil
}

// Close disconnects every client and releases backend connections
func (a *App) Close() error {
	a.Connections.Close()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
