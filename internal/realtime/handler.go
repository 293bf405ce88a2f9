package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/anagrams-go/internal/model"
	"github.com/mcoot/anagrams-go/internal/protocol"
	"github.com/mcoot/anagrams-go/internal/services/session"
)

// Config tunes the WebSocket connections
type Config struct {
	// Time between transport pings; also drives latency tracking
	PingPeriod time.Duration
	// Time allowed to write a message to the peer
	WriteWait time.Duration
	// Largest message accepted from a client
	MaxMessageSize int64
	// Outgoing messages buffered per client
	SendBufferSize int
}

// DefaultConfig returns the default connection settings
func DefaultConfig() Config {
	return Config{
		PingPeriod:     10 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 64 * 1024,
		SendBufferSize: 256,
	}
}

// pongWait is how long a connection may stay silent before it is
// considered gone
func (c Config) pongWait() time.Duration {
	return 2 * c.PingPeriod
}

// Sessions receives the events read from connections
type Sessions interface {
	Dispatch(ctx context.Context, in session.Inbound) error
	PingSent(ctx context.Context, id model.PlayerID) error
	PongReceived(ctx context.Context, id model.PlayerID) error
}

// Handler upgrades HTTP requests to WebSocket connections, one player
// per connection
type Handler struct {
	manager  *Manager
	sessions Sessions
	cfg      Config
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new Handler
func NewHandler(manager *Manager, sessions Sessions, cfg Config, logger *slog.Logger) *Handler {
	defaults := DefaultConfig()
	if cfg.PingPeriod <= 0 {
		cfg.PingPeriod = defaults.PingPeriod
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = defaults.WriteWait
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = defaults.SendBufferSize
	}
	return &Handler{
		manager:  manager,
		sessions: sessions,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP handles one connection for its whole lifetime
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", slog.Any("error", err))
		return
	}

	ctx := context.WithoutCancel(r.Context())
	client := newClient(model.PlayerID(uuid.NewString()), conn, h.cfg.SendBufferSize, h.logger)
	h.manager.Attach(client)

	if err := h.sessions.Dispatch(ctx, session.Inbound{Kind: session.KindConnect, From: client.id}); err != nil {
		h.logger.Error("ws connect failed",
			slog.String("player_id", string(client.id)),
			slog.Any("error", err))
		h.manager.Detach(client.id)
		client.close()
		return
	}

	written := make(chan struct{})
	go func() {
		defer close(written)
		h.writePump(ctx, client)
	}()
	h.readPump(ctx, client)
	<-written
}

func (h *Handler) readPump(ctx context.Context, c *Client) {
	defer func() {
		if err := h.sessions.Dispatch(ctx, session.Inbound{Kind: session.KindDisconnect, From: c.id}); err != nil {
			c.logger.Error("ws disconnect handling failed", slog.Any("error", err))
		}
		h.manager.Detach(c.id)
		c.finish()
		c.logger.Info("ws connection closed",
			slog.Duration("connection_duration", time.Since(c.connectedAt)))
	}()

	c.conn.SetReadLimit(h.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.cfg.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		if err := h.sessions.PongReceived(ctx, c.id); err != nil {
			c.logger.Warn("ws latency update failed", slog.Any("error", err))
		}
		return c.conn.SetReadDeadline(time.Now().Add(h.cfg.pongWait()))
	})
	// The close frame is answered by flush, after anything still queued
	c.conn.SetCloseHandler(func(int, string) error { return nil })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("ws read error", slog.Any("error", err))
			}
			return
		}

		in, err := protocol.Decode(c.id, data)
		if err == nil {
			err = h.sessions.Dispatch(ctx, in)
		}
		if err != nil {
			h.report(c, in, err)
		}

		// Pongs are not read while an event is handled, and a round start
		// can wait on the provider for longer than pongWait
		_ = c.conn.SetReadDeadline(time.Now().Add(h.cfg.pongWait()))
	}
}

func (h *Handler) report(c *Client, in session.Inbound, err error) {
	level := slog.LevelWarn
	if !isClientError(err) {
		level = slog.LevelError
	}
	c.logger.Log(context.Background(), level, "ws event failed",
		slog.String("event", in.Kind.String()),
		slog.Any("error", err))
	c.deliver(protocol.ErrorEvent(err))
}

func isClientError(err error) bool {
	return errors.Is(err, protocol.ErrMalformedFrame) ||
		errors.Is(err, model.ErrUnknownEvent) ||
		errors.Is(err, model.ErrRoomNotFound) ||
		errors.Is(err, model.ErrRoomFull) ||
		errors.Is(err, model.ErrNotInRoom)
}

func (h *Handler) writePump(ctx context.Context, c *Client) {
	ticker := time.NewTicker(h.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			if err := h.sessions.PingSent(ctx, c.id); err != nil {
				c.logger.Warn("ws ping tracking failed", slog.Any("error", err))
			}

		case <-c.drain:
			h.flush(c)
			return

		case <-c.done:
			return
		}
	}
}

// flush writes every queued message followed by a close frame
func (h *Handler) flush(c *Client) {
	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		default:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
