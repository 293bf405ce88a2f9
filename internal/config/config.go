package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. ANAGRAMS_PORT
const EnvPrefix = "ANAGRAMS"

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Round data sources
const (
	WordsFromAPI        = "api"
	WordsFromDictionary = "dictionary"
)

// Config holds the server configuration
type Config struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	StorageType string `mapstructure:"storage_type"`
	RedisURL    string `mapstructure:"redis_url"`

	WordsSource      string        `mapstructure:"words_source"`
	WordsAPIURL      string        `mapstructure:"words_api_url"`
	DictionaryPath   string        `mapstructure:"dictionary_path"`
	RoundDataTimeout time.Duration `mapstructure:"round_data_timeout"`

	WordLength int `mapstructure:"word_length"`
	MaxPlayers int `mapstructure:"max_players"`

	PingPeriod time.Duration `mapstructure:"ping_period"`
	PublicURL  string        `mapstructure:"public_url"`
	LogLevel   string        `mapstructure:"log_level"`
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	return Config{
		Host:             "",
		Port:             4000,
		StorageType:      StorageMemory,
		RedisURL:         "redis://localhost:6379",
		WordsSource:      WordsFromAPI,
		WordsAPIURL:      "https://andvygrams.andytpngo.org",
		DictionaryPath:   "data/words.txt",
		RoundDataTimeout: 10 * time.Second,
		WordLength:       6,
		MaxPlayers:       2,
		PingPeriod:       10 * time.Second,
		PublicURL:        "",
		LogLevel:         "info",
	}
}

// RegisterFlags adds a flag for every setting. Flag names use dashes,
// config keys and environment variables use underscores.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.String("config", "", "path to a YAML config file (env: ANAGRAMS_CONFIG)")
	fs.String("env-file", ".env", "dotenv file loaded before reading the environment")

	fs.String("host", d.Host, "address to bind to (env: ANAGRAMS_HOST)")
	fs.IntP("port", "p", d.Port, "port to listen on (env: ANAGRAMS_PORT)")
	fs.String("storage-type", d.StorageType, "storage backend: memory or redis (env: ANAGRAMS_STORAGE_TYPE)")
	fs.String("redis-url", d.RedisURL, "redis connection URL (env: ANAGRAMS_REDIS_URL)")
	fs.String("words-source", d.WordsSource, "round data source: api or dictionary (env: ANAGRAMS_WORDS_SOURCE)")
	fs.String("words-api-url", d.WordsAPIURL, "base URL of the words API (env: ANAGRAMS_WORDS_API_URL)")
	fs.String("dictionary-path", d.DictionaryPath, "word list used by the dictionary source (env: ANAGRAMS_DICTIONARY_PATH)")
	fs.Duration("round-data-timeout", d.RoundDataTimeout, "timeout for each words API call (env: ANAGRAMS_ROUND_DATA_TIMEOUT)")
	fs.Int("word-length", d.WordLength, "length of the word each round is built from (env: ANAGRAMS_WORD_LENGTH)")
	fs.Int("max-players", d.MaxPlayers, "capacity of new rooms (env: ANAGRAMS_MAX_PLAYERS)")
	fs.Duration("ping-period", d.PingPeriod, "interval between latency pings (env: ANAGRAMS_PING_PERIOD)")
	fs.String("public-url", d.PublicURL, "base URL used in room join links (env: ANAGRAMS_PUBLIC_URL)")
	fs.String("log-level", d.LogLevel, "log level: debug, info, warn, error (env: ANAGRAMS_LOG_LEVEL)")
}

// Load resolves the configuration from, in increasing precedence: defaults,
// the config file, the environment (including the dotenv file) and flags
// that were explicitly set. A nil flag set skips the flag layer.
func Load(flags *pflag.FlagSet) (*Config, error) {
	envFile := ".env"
	envFileSet := false
	if flags != nil {
		if f := flags.Lookup("env-file"); f != nil {
			envFile = f.Value.String()
			envFileSet = f.Changed
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && (envFileSet || !errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
				bindErr = errors.Join(bindErr, err)
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("config", "")
	v.SetDefault("host", d.Host)
	v.SetDefault("port", d.Port)
	v.SetDefault("storage_type", d.StorageType)
	v.SetDefault("redis_url", d.RedisURL)
	v.SetDefault("words_source", d.WordsSource)
	v.SetDefault("words_api_url", d.WordsAPIURL)
	v.SetDefault("dictionary_path", d.DictionaryPath)
	v.SetDefault("round_data_timeout", d.RoundDataTimeout)
	v.SetDefault("word_length", d.WordLength)
	v.SetDefault("max_players", d.MaxPlayers)
	v.SetDefault("ping_period", d.PingPeriod)
	v.SetDefault("public_url", d.PublicURL)
	v.SetDefault("log_level", d.LogLevel)
}

// Validate checks that the settings are usable together
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}

	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return errors.New("redis_url is required when storage_type is redis")
		}
	default:
		return fmt.Errorf("invalid storage_type %q: must be memory or redis", c.StorageType)
	}

	switch c.WordsSource {
	case WordsFromAPI:
		if c.WordsAPIURL == "" {
			return errors.New("words_api_url is required when words_source is api")
		}
	case WordsFromDictionary:
		if c.DictionaryPath == "" {
			return errors.New("dictionary_path is required when words_source is dictionary")
		}
	default:
		return fmt.Errorf("invalid words_source %q: must be api or dictionary", c.WordsSource)
	}

	if c.WordLength < 1 {
		return fmt.Errorf("invalid word_length: %d", c.WordLength)
	}
	if c.MaxPlayers < 1 {
		return fmt.Errorf("invalid max_players: %d", c.MaxPlayers)
	}
	if c.RoundDataTimeout <= 0 {
		return fmt.Errorf("invalid round_data_timeout: %s", c.RoundDataTimeout)
	}
	if c.PingPeriod <= 0 {
		return fmt.Errorf("invalid ping_period: %s", c.PingPeriod)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses the configured log level
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
