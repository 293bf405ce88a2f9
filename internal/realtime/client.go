package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/anagrams-go/internal/model"
	"github.com/mcoot/anagrams-go/internal/protocol"
)

// Client is one WebSocket connection, and so one player
type Client struct {
	id          model.PlayerID
	conn        *websocket.Conn
	send        chan []byte
	drain       chan struct{}
	done        chan struct{}
	drainOnce   sync.Once
	once        sync.Once
	connectedAt time.Time
	logger      *slog.Logger
}

func newClient(id model.PlayerID, conn *websocket.Conn, bufferSize int, logger *slog.Logger) *Client {
	return &Client{
		id:          id,
		conn:        conn,
		send:        make(chan []byte, bufferSize),
		drain:       make(chan struct{}),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
		logger:      logger.With(slog.String("player_id", string(id))),
	}
}

// ID returns the player handle of the connection
func (c *Client) ID() model.PlayerID {
	return c.id
}

// deliver encodes an event for this client and queues it. A full
// buffer drops the message rather than blocking the sender.
func (c *Client) deliver(event model.Event) {
	frame, err := protocol.Encode(c.id, event)
	if err != nil {
		c.logger.Error("ws failed to encode event",
			slog.String("event", string(event.Type)),
			slog.Any("error", err))
		return
	}

	select {
	case <-c.done:
	case c.send <- frame:
	default:
		c.logger.Warn("ws message dropped - client buffer full",
			slog.String("event", string(event.Type)))
	}
}

// finish asks the write pump to send whatever is queued, say goodbye
// and close the connection
func (c *Client) finish() {
	c.drainOnce.Do(func() { close(c.drain) })
}

// close stops the write pump and closes the connection. Safe to call
// more than once.
func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}
