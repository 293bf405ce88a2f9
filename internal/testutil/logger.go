package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// NopLogger returns a logger that discards all output.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// LogRecorder collects JSON log lines written by a logger from RecordingLogger
type LogRecorder struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (r *LogRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

// Entries decodes every record written so far
func (r *LogRecorder) Entries() []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []map[string]any
	for _, line := range strings.Split(r.buf.String(), "\n") {
		if line == "" {
			continue
		}
		var e map[string]any
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

// Find returns the first record with the given message, or nil
func (r *LogRecorder) Find(msg string) map[string]any {
	for _, e := range r.Entries() {
		if e[slog.MessageKey] == msg {
			return e
		}
	}
	return nil
}

// Count returns how many records carry the given message
func (r *LogRecorder) Count(msg string) int {
	n := 0
	for _, e := range r.Entries() {
		if e[slog.MessageKey] == msg {
			n++
		}
	}
	return n
}

// RecordingLogger returns a debug-level logger whose records can be inspected
func RecordingLogger() (*slog.Logger, *LogRecorder) {
	rec := &LogRecorder{}
	return slog.New(slog.NewJSONHandler(rec, &slog.HandlerOptions{Level: slog.LevelDebug})), rec
}
