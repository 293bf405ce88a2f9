package factory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/anagrams-go/internal/api"
	"github.com/mcoot/anagrams-go/internal/api/response"
	"github.com/mcoot/anagrams-go/internal/config"
	"github.com/mcoot/anagrams-go/internal/model"
	"github.com/mcoot/anagrams-go/internal/protocol"
	"github.com/mcoot/anagrams-go/internal/services/words"
	"github.com/mcoot/anagrams-go/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app    *TestApp
	server *httptest.Server
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		Rooms:       s.app.Coordinator,
		RoomLister:  s.app.Rooms,
		Connections: s.app.Connections,
		Realtime:    s.app.Realtime,
	})
	s.server = httptest.NewServer(router)
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
	s.server.Close()
}

func (s *IntegrationSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *IntegrationSuite) emit(conn *websocket.Conn, event string, args ...any) {
	data, err := protocol.NewFrame(event, args...)
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, data))
}

func (s *IntegrationSuite) expect(conn *websocket.Conn, event model.EventType) protocol.Frame {
	s.T().Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		s.Require().NoError(err, "waiting for %s", event)
		f, err := protocol.ParseFrame(data)
		s.Require().NoError(err)
		if f.Event == string(event) {
			return f
		}
	}
}

func (s *IntegrationSuite) room(code string) (int, response.Room) {
	resp, err := http.Get(s.server.URL + "/api/v1/rooms/" + code)
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	var room response.Room
	if resp.StatusCode == http.StatusOK {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&room))
	}
	return resp.StatusCode, room
}

// Test: two players meet, play a round, rematch and part ways
func (s *IntegrationSuite) TestCompleteSessionFlow() {
	s.app.MockRandom.QueueString("GAME")
	a, b := s.dial(), s.dial()

	// Step 1: A requests a room
	s.emit(a, protocol.EventRequestRoom)
	var code string
	s.Require().NoError(s.expect(a, model.EventRequestRoomResponse).Arg(0, &code))
	s.Equal("GAME", code)

	// Step 2: B joins with the shared code, filling the room
	s.emit(b, protocol.EventRequestToJoin, strings.ToLower(code))
	var accepted bool
	s.Require().NoError(s.expect(b, model.EventResponseRequestToJoin).Arg(0, &accepted))
	s.True(accepted)
	s.expect(a, model.EventGameReady)
	s.expect(b, model.EventGameReady)

	status, room := s.room(code)
	s.Require().Equal(http.StatusOK, status)
	s.Equal(string(model.RoomStateWaitingForPlayersToReady), room.State)
	s.Len(room.Members, 2)

	// Step 3: both ready up, the round starts
	s.emit(a, protocol.EventPlayerReady, code)
	s.expect(a, model.EventPlayerReadyResponse)
	s.expect(b, model.EventOpponentReady)
	s.emit(b, protocol.EventPlayerReady, code)

	for _, conn := range []*websocket.Conn{a, b} {
		var data []json.RawMessage
		s.Require().NoError(s.expect(conn, model.EventDataReady).Arg(0, &data))
		s.Require().Len(data, 2)
		var letters []string
		s.Require().NoError(json.Unmarshal(data[0], &letters))
		s.ElementsMatch(strings.Split("planet", ""), letters)
	}

	status, room = s.room(code)
	s.Require().Equal(http.StatusOK, status)
	s.Equal(1, room.Rounds)
	s.Equal(string(model.RoomStateInGame), room.State)

	// Step 4: A reports a score, both see the mirrored scoreboard
	s.emit(a, protocol.EventScoreUpdate, 4, []string{"plan", "net", "net"})
	var boardA, boardB []map[string]json.RawMessage
	s.Require().NoError(s.expect(a, model.EventScoreboardUpdate).Arg(0, &boardA))
	s.Require().NoError(s.expect(b, model.EventScoreboardUpdate).Arg(0, &boardB))
	s.JSONEq(`4`, string(boardA[0]["you"]))
	s.JSONEq(`4`, string(boardB[0]["opponent"]))
	s.JSONEq(`["plan","net"]`, string(boardB[1]["opponent"]))

	// Step 5: rematch handshake
	s.emit(a, protocol.EventLetsPlayAgain, code)
	s.expect(b, model.EventOpponentWantsToPlayAgain)
	s.emit(b, protocol.EventLetsPlayAgain, code)
	s.expect(a, model.EventResetAndGetReady)
	s.expect(b, model.EventResetAndGetReady)
	s.expect(a, model.EventDataReady)
	s.expect(b, model.EventDataReady)
	s.Equal(2, s.app.FakeProvider.Calls())

	// Step 6: A drops, B is told and leaves, the room disappears
	s.Require().NoError(a.Close())
	s.expect(b, model.EventOpponentLeft)
	s.emit(b, protocol.EventLeaveRoom, code)

	s.Eventually(func() bool {
		status, _ := s.room(code)
		return status == http.StatusNotFound
	}, 2*time.Second, 20*time.Millisecond)
}

// Test: the room info endpoint reports reported scores
func (s *IntegrationSuite) TestRoomInfoShowsScores() {
	s.app.MockRandom.QueueString("SOLO")
	a := s.dial()

	s.emit(a, protocol.EventRequestRoom)
	s.expect(a, model.EventRequestRoomResponse)
	s.emit(a, protocol.EventScoreUpdate, 9, []string{"lane"})
	s.expect(a, model.EventScoreboardUpdate)

	status, room := s.room("SOLO")
	s.Require().Equal(http.StatusOK, status)
	s.Require().Len(room.Members, 1)
	s.Equal(9, room.Members[0].Score)
	s.Equal([]string{"lane"}, room.Members[0].WordsFound)
	s.Equal(string(model.RoomStateNotEnoughPlayers), room.State)
}

func (s *IntegrationSuite) TestHealthCountsConnectionsAndRooms() {
	s.app.MockRandom.QueueString("HLTH")
	a := s.dial()
	s.emit(a, protocol.EventRequestRoom)
	s.expect(a, model.EventRequestRoomResponse)

	resp, err := http.Get(s.server.URL + "/api/v1/health")
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	var health response.Health
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&health))
	s.Equal("ok", health.Status)
	s.Equal(1, health.Connections)
	s.Equal(1, health.Rooms)
}

func (s *IntegrationSuite) TestResetClearsState() {
	ctx := context.Background()
	_, err := s.app.Players.Create(ctx, "stale")
	s.Require().NoError(err)

	s.Require().NoError(s.app.Reset(ctx))

	exists, err := s.app.Players.Exists(ctx, "stale")
	s.Require().NoError(err)
	s.False(exists)
}

func TestNewDefaultsToMemoryAndAPI(t *testing.T) {
	app, err := New(Config{WordsAPIURL: "http://words.invalid"})
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	assert.IsType(t, &words.APIClient{}, app.Provider)
	assert.NotNil(t, app.Coordinator)
	assert.NotNil(t, app.Realtime)
}

func TestNewWithDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("planet\nplane\nnet\n"), 0o600))

	app, err := New(Config{WordsSource: config.WordsFromDictionary, DictionaryPath: path})
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	word, err := app.Provider.RandomWord(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, "planet", word)
}

func TestNewWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.StorageType = config.StorageRedis
	cfg.RedisURL = "redis://" + mr.Addr()

	app, err := New(ConfigFrom(&cfg, testutil.NopLogger()))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = app.Players.Create(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, app.Reset(ctx))
	exists, err := app.Players.Exists(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, app.Close())
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown storage", Config{StorageType: "postgres", WordsAPIURL: "http://x"}},
		{"redis without config", Config{StorageType: config.StorageRedis, WordsAPIURL: "http://x"}},
		{"unknown words source", Config{WordsSource: "oracle"}},
		{"api without url", Config{WordsSource: config.WordsFromAPI}},
		{"missing dictionary", Config{WordsSource: config.WordsFromDictionary, DictionaryPath: "/nonexistent/words.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := config.Default()
	cfg.WordLength = 7
	cfg.MaxPlayers = 3
	cfg.PingPeriod = 5 * time.Second

	fc := ConfigFrom(&cfg, nil)
	assert.Equal(t, 7, fc.Session.WordLength)
	assert.Equal(t, 3, fc.Session.MaxPlayers)
	assert.Equal(t, 5*time.Second, fc.Realtime.PingPeriod)
	assert.Nil(t, fc.RedisConfig)

	cfg.StorageType = config.StorageRedis
	cfg.RedisURL = "redis://cache:6379"
	fc = ConfigFrom(&cfg, nil)
	require.NotNil(t, fc.RedisConfig)
	assert.Equal(t, "redis://cache:6379", fc.RedisConfig.URL)
}
