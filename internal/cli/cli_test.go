package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/anagrams-go/internal/api"
	"github.com/mcoot/anagrams-go/internal/factory"
	"github.com/mcoot/anagrams-go/internal/model"
	"github.com/mcoot/anagrams-go/internal/services/session"
	"github.com/mcoot/anagrams-go/internal/testutil"
)

type CLISuite struct {
	suite.Suite
	app    *factory.TestApp
	server *httptest.Server
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.server = httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		Rooms:       s.app.Coordinator,
		RoomLister:  s.app.Rooms,
		Connections: s.app.Connections,
		Realtime:    s.app.Realtime,
	}))
}

func (s *CLISuite) TearDownTest() {
	_ = s.app.Close()
	s.server.Close()
}

func (s *CLISuite) run(args ...string) (string, error) {
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--server", s.server.URL, "--timeout", "2s"}, args...))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

// openRoom creates a room held by a player with no socket
func (s *CLISuite) openRoom(code string, owner model.PlayerID) {
	ctx := context.Background()
	s.app.MockRandom.QueueString(code)
	s.Require().NoError(s.app.Coordinator.Dispatch(ctx, session.Inbound{Kind: session.KindConnect, From: owner}))
	s.Require().NoError(s.app.Coordinator.Dispatch(ctx, session.Inbound{Kind: session.KindRequestRoom, From: owner}))
}

func (s *CLISuite) TestHealth() {
	out, err := s.run("health")
	s.Require().NoError(err)
	s.Contains(out, "Status: ok")
	s.Contains(out, "Rooms: 0")
}

func (s *CLISuite) TestHealthJSON() {
	out, err := s.run("health", "-o", "json")
	s.Require().NoError(err)

	var result HealthResult
	s.Require().NoError(json.Unmarshal([]byte(out), &result))
	s.Equal("ok", result.Status)
}

func (s *CLISuite) TestHealthWaitGivesUp() {
	s.server.Close()

	start := time.Now()
	_, err := s.run("health", "--wait", "300ms")
	s.Error(err)
	s.GreaterOrEqual(time.Since(start), 250*time.Millisecond)
}

func (s *CLISuite) TestRoomInfo() {
	s.openRoom("INFO", "p1")

	out, err := s.run("room", "info", "info")
	s.Require().NoError(err)
	s.Contains(out, "Room: INFO")
	s.Contains(out, "State: NOT_ENOUGH_PLAYERS")
	s.Contains(out, "Members (1/2)")
	s.Contains(out, "p1")
}

func (s *CLISuite) TestRoomInfoNotFound() {
	_, err := s.run("room", "info", "NOPE")
	s.Require().Error(err)
	s.Contains(err.Error(), "ROOM_NOT_FOUND")
}

func (s *CLISuite) TestRoomQR() {
	s.openRoom("CODE", "p1")
	path := filepath.Join(s.T().TempDir(), "room.png")

	out, err := s.run("room", "qr", "CODE", "-f", path)
	s.Require().NoError(err)
	s.Contains(out, path)

	data, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.True(bytes.HasPrefix(data, []byte("\x89PNG")))
}

func (s *CLISuite) TestPing() {
	out, err := s.run("ping", "-c", "2", "--interval", "1ms", "-o", "json")
	s.Require().NoError(err)

	var result PingResult
	s.Require().NoError(json.Unmarshal([]byte(out), &result))
	s.Len(result.Samples, 2)
	s.LessOrEqual(result.Min, result.Avg)
	s.LessOrEqual(result.Avg, result.Max)
}

func (s *CLISuite) TestPingRejectsZeroCount() {
	_, err := s.run("ping", "-c", "0")
	s.Error(err)
}

func (s *CLISuite) TestWatchRequestsRoom() {
	s.app.MockRandom.QueueString("WTCH")

	out, err := s.run("watch", "--exit-on", "requestRoomResponse")
	s.Require().NoError(err)
	s.Contains(out, `requestRoomResponse: ["WTCH"]`)
}

func (s *CLISuite) TestWatchJoinAndReady() {
	s.openRoom("PLAY", "p1")
	s.Require().NoError(s.app.Coordinator.Dispatch(context.Background(),
		session.Inbound{Kind: session.KindReady, From: "p1", Room: "PLAY"}))

	out, err := s.run("watch", "--join", "play", "--ready", "--exit-on", "dataReady")
	s.Require().NoError(err)
	s.Contains(out, "responseRequestToJoin: [true]")
	s.Contains(out, "gameReady")
	s.Contains(out, "playerReadyResponse")
	s.Contains(out, "dataReady")
}

func (s *CLISuite) TestWatchJoinRejected() {
	_, err := s.run("watch", "--join", "GONE")
	s.Require().Error(err)
	s.Contains(err.Error(), "could not join room GONE")
}

func TestSocketURL(t *testing.T) {
	tests := []struct {
		server string
		want   string
	}{
		{"http://localhost:4000", "ws://localhost:4000/ws"},
		{"https://play.example.com/", "wss://play.example.com/ws"},
	}
	for _, tt := range tests {
		c := &Config{ServerURL: tt.server}
		assert.Equal(t, tt.want, c.SocketURL())
	}
}

func TestSummarize(t *testing.T) {
	p := PingResult{Samples: []time.Duration{3 * time.Millisecond, time.Millisecond, 2 * time.Millisecond}}
	summarize(&p)
	assert.Equal(t, time.Millisecond, p.Min)
	assert.Equal(t, 2*time.Millisecond, p.Avg)
	assert.Equal(t, 3*time.Millisecond, p.Max)
}
