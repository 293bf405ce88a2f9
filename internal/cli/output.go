package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// JSON reports whether output is JSON
func (o *Output) JSON() bool {
	return o.format == "json"
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.JSON() {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.JSON() {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.JSON() {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case Room:
		o.printRoom(v)
	case PingResult:
		o.printPingResult(v)
	case SocketEvent:
		o.printSocketEvent(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Rooms       int    `json:"rooms"`
}

// Room response type (matches API)
type Room struct {
	Code       string    `json:"code"`
	State      string    `json:"state"`
	MaxPlayers int       `json:"max_players"`
	Rounds     int       `json:"rounds"`
	Members    []Member  `json:"members"`
	CreatedAt  time.Time `json:"created_at"`
	JoinURL    string    `json:"join_url,omitempty"`
}

// Member response type
type Member struct {
	ID         string   `json:"id"`
	Score      int      `json:"score"`
	WordsFound []string `json:"words_found"`
	IsReady    bool     `json:"is_ready"`
	LatencyMs  float64  `json:"latency_ms"`
}

// PingResult summarizes a latency probe
type PingResult struct {
	Samples []time.Duration `json:"samples"`
	Min     time.Duration   `json:"min"`
	Avg     time.Duration   `json:"avg"`
	Max     time.Duration   `json:"max"`
}

// SocketEvent is one frame received while watching
type SocketEvent struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Args  json.RawMessage `json:"args"`
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	_, _ = fmt.Fprintf(o.w, "Connections: %d\n", h.Connections)
	_, _ = fmt.Fprintf(o.w, "Rooms: %d\n", h.Rooms)
}

func (o *Output) printRoom(r Room) {
	_, _ = fmt.Fprintf(o.w, "Room: %s\n", r.Code)
	_, _ = fmt.Fprintf(o.w, "State: %s\n", r.State)
	_, _ = fmt.Fprintf(o.w, "Rounds: %d\n", r.Rounds)
	if r.JoinURL != "" {
		_, _ = fmt.Fprintf(o.w, "Join: %s\n", r.JoinURL)
	}
	_, _ = fmt.Fprintf(o.w, "Members (%d/%d):\n", len(r.Members), r.MaxPlayers)
	for _, m := range r.Members {
		ready := ""
		if m.IsReady {
			ready = " [ready]"
		}
		_, _ = fmt.Fprintf(o.w, "  - %s: %d points, %d words, %.1fms%s\n",
			m.ID, m.Score, len(m.WordsFound), m.LatencyMs, ready)
	}
}

func (o *Output) printPingResult(p PingResult) {
	for i, d := range p.Samples {
		_, _ = fmt.Fprintf(o.w, "ping %d: %s\n", i+1, d.Round(time.Microsecond))
	}
	_, _ = fmt.Fprintf(o.w, "min/avg/max: %s/%s/%s\n",
		p.Min.Round(time.Microsecond), p.Avg.Round(time.Microsecond), p.Max.Round(time.Microsecond))
}

func (o *Output) printSocketEvent(e SocketEvent) {
	args := strings.ReplaceAll(string(e.Args), "\n", " ")
	// Anagram lists get long
	if len(args) > 100 {
		args = args[:100] + "..."
	}
	_, _ = fmt.Fprintf(o.w, "[%s] %s: %s\n", e.Time.Format("2006-01-02 15:04:05"), e.Event, args)
}
