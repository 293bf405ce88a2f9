package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings. Session state is transient, so everything expires.
	PlayerTTL time.Duration
	RoomTTL   time.Duration

	// MaxTxRetries bounds optimistic-lock retries for updates
	MaxTxRetries int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		PlayerTTL:    12 * time.Hour,
		RoomTTL:      12 * time.Hour,
		MaxTxRetries: 16,
	}
}
