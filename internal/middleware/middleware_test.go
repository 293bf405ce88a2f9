package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/anagrams-go/internal/middleware"
	"github.com/mcoot/anagrams-go/internal/testutil"
)

func TestLoggingCapturesStatus(t *testing.T) {
	var captured *middleware.ResponseWriter
	logger, logs := testutil.RecordingLogger()
	h := middleware.Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = w.(*middleware.ResponseWriter)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pot", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	require.NotNil(t, captured)
	assert.Equal(t, http.StatusTeapot, captured.Status())
	assert.Equal(t, len("short and stout"), captured.Size())
	assert.False(t, captured.Hijacked())

	entry := logs.Find("http request")
	require.NotNil(t, entry)
	assert.Equal(t, "/pot", entry["path"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
}

func TestLoggingAllowsWebSocketUpgrade(t *testing.T) {
	upgrader := websocket.Upgrader{}
	h := middleware.Logging(testutil.NopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, msg)
	}))
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+srv.URL[len("http"):], nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("echo")))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "echo", string(msg))
}

func TestHijackUnsupported(t *testing.T) {
	rw := &middleware.ResponseWriter{ResponseWriter: httptest.NewRecorder()}
	_, _, err := rw.Hijack()
	assert.Error(t, err)
	assert.False(t, rw.Hijacked())
}

func TestRecoveryWritesPanicResponse(t *testing.T) {
	h := middleware.Recovery(testutil.NopLogger(), middleware.UpgradePanicHandler)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
