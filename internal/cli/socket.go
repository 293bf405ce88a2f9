package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/anagrams-go/internal/protocol"
)

// socket is a game connection speaking the server's frame protocol
type socket struct {
	conn *websocket.Conn
}

func dialSocket(ctx context.Context) (*socket, error) {
	dialer := websocket.Dialer{HandshakeTimeout: cfg.Timeout}
	conn, _, err := dialer.DialContext(ctx, cfg.SocketURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	return &socket{conn: conn}, nil
}

func (s *socket) emit(event string, args ...any) error {
	data, err := protocol.NewFrame(event, args...)
	if err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// next reads the next frame. A zero deadline waits indefinitely.
func (s *socket) next(deadline time.Time) (protocol.Frame, error) {
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return protocol.Frame{}, err
	}
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return protocol.Frame{}, err
	}
	return protocol.ParseFrame(data)
}

// closeOnDone unblocks pending reads once ctx ends
func (s *socket) closeOnDone(ctx context.Context) {
	go func() {
		<-ctx.Done()
		_ = s.conn.Close()
	}()
}

func (s *socket) close() {
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	_ = s.conn.Close()
}
