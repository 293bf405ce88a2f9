package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// unsetForTest clears a variable and restores it after the test
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newFlags(t, "--env-file", ""))
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d, *cfg)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, 6, cfg.WordLength)
	assert.Equal(t, 2, cfg.MaxPlayers)
}

func TestLoadWithoutFlags(t *testing.T) {
	t.Setenv("ANAGRAMS_MAX_PLAYERS", "3")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxPlayers)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("ANAGRAMS_PORT", "5000")
	t.Setenv("ANAGRAMS_ROUND_DATA_TIMEOUT", "3s")
	t.Setenv("ANAGRAMS_STORAGE_TYPE", "redis")
	t.Setenv("ANAGRAMS_REDIS_URL", "redis://cache:6379/1")

	cfg, err := Load(newFlags(t, "--env-file", ""))
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.RoundDataTimeout)
	assert.Equal(t, StorageRedis, cfg.StorageType)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("ANAGRAMS_PORT", "5000")

	cfg, err := Load(newFlags(t, "--env-file", "", "--port", "6000", "--word_length", "8"))
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, 8, cfg.WordLength)
}

func TestConfigFile(t *testing.T) {
	dict := writeFile(t, "words.txt", "planet\n")
	path := writeFile(t, "anagrams.yaml", `
port: 7000
words_source: dictionary
dictionary_path: `+dict+`
ping_period: 30s
public_url: https://play.example.com
`)

	cfg, err := Load(newFlags(t, "--env-file", "", "--config", path))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, WordsFromDictionary, cfg.WordsSource)
	assert.Equal(t, dict, cfg.DictionaryPath)
	assert.Equal(t, 30*time.Second, cfg.PingPeriod)
	assert.Equal(t, "https://play.example.com", cfg.PublicURL)
}

func TestEnvironmentOverridesConfigFile(t *testing.T) {
	path := writeFile(t, "anagrams.yaml", "port: 7000\n")
	t.Setenv("ANAGRAMS_PORT", "5000")

	cfg, err := Load(newFlags(t, "--env-file", "", "--config", path))
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := Load(newFlags(t, "--env-file", "", "--config", filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Error(t, err)
}

func TestEnvFile(t *testing.T) {
	unsetForTest(t, "ANAGRAMS_WORD_LENGTH")
	path := writeFile(t, "test.env", "ANAGRAMS_WORD_LENGTH=7\n")

	cfg, err := Load(newFlags(t, "--env-file", path))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.WordLength)
}

func TestEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	t.Setenv("ANAGRAMS_WORD_LENGTH", "5")
	path := writeFile(t, "test.env", "ANAGRAMS_WORD_LENGTH=7\n")

	cfg, err := Load(newFlags(t, "--env-file", path))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.WordLength)
}

func TestExplicitEnvFileMustExist(t *testing.T) {
	_, err := Load(newFlags(t, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"port too low", func(c *Config) { c.Port = 0 }},
		{"port too high", func(c *Config) { c.Port = 70000 }},
		{"unknown storage", func(c *Config) { c.StorageType = "postgres" }},
		{"redis without url", func(c *Config) { c.StorageType = StorageRedis; c.RedisURL = "" }},
		{"unknown words source", func(c *Config) { c.WordsSource = "oracle" }},
		{"api without url", func(c *Config) { c.WordsAPIURL = "" }},
		{"dictionary without path", func(c *Config) { c.WordsSource = WordsFromDictionary; c.DictionaryPath = "" }},
		{"zero word length", func(c *Config) { c.WordLength = 0 }},
		{"zero max players", func(c *Config) { c.MaxPlayers = 0 }},
		{"zero timeout", func(c *Config) { c.RoundDataTimeout = 0 }},
		{"zero ping period", func(c *Config) { c.PingPeriod = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", level.String())

	cfg.LogLevel = "WARN"
	level, err = cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, "WARN", level.String())
}
