package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/anagrams-go/internal/model"
)

// Connect registers a new connection as a player
func (c *Coordinator) Connect(ctx context.Context, id model.PlayerID) error {
	if _, err := c.players.Create(ctx, id); err != nil {
		return err
	}
	c.logger.Info("client connected", slog.String("player_id", string(id)))
	return nil
}

// Disconnect notifies the player's room, then forgets the player and
// removes them from every room that still lists them
func (c *Coordinator) Disconnect(ctx context.Context, id model.PlayerID) error {
	player, unlock, err := c.lockPlayerRoom(ctx, id)
	if errors.Is(err, model.ErrPlayerNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if player.InRoom() {
		c.emitter.Broadcast(player.RoomID, model.Signal(model.EventOpponentLeft), id)
		if err := c.players.AssignRoom(ctx, id, ""); err != nil {
			unlock()
			return err
		}
		if _, err := c.rooms.RemovePlayer(ctx, id, player.RoomID); err != nil {
			unlock()
			return err
		}
	}
	err = c.players.Delete(ctx, id)
	unlock()
	if err != nil {
		return err
	}

	// Stray memberships only exist if something went wrong earlier
	stray, err := c.rooms.RemovePlayerFromAllRooms(ctx, id)
	if err != nil {
		return err
	}
	if len(stray) > 0 {
		c.logger.Warn("removed player from stray rooms",
			slog.String("player_id", string(id)),
			slog.Any("rooms", stray),
		)
	}

	c.logger.Info("client disconnected",
		slog.String("player_id", string(id)),
		slog.String("room_id", string(player.RoomID)),
	)
	return nil
}

// RequestRoom creates a room, joins the requester to it and tells them
// its code
func (c *Coordinator) RequestRoom(ctx context.Context, id model.PlayerID) error {
	if _, err := c.players.Get(ctx, id); err != nil {
		return err
	}

	room, err := c.rooms.CreateRoom(ctx, c.cfg.MaxPlayers)
	if err != nil {
		return err
	}
	if err := c.Join(ctx, id, room.ID); err != nil {
		return err
	}

	c.emitter.Send(id, model.NewEvent(model.EventRequestRoomResponse, model.RoomCodePayload{RoomID: room.ID}))
	return nil
}

// Join adds the player to a room. Joining a different room first
// leaves the current one. A missing or full room is answered with a
// rejection rather than an error.
func (c *Coordinator) Join(ctx context.Context, id model.PlayerID, roomID model.RoomID) error {
	player, unlock, err := c.lockPlayerRoom(ctx, id, roomID)
	if err != nil {
		return err
	}
	defer unlock()

	room, err := c.rooms.GetRoom(ctx, roomID)
	if errors.Is(err, model.ErrRoomNotFound) {
		c.reject(id, roomID, "room not found")
		return nil
	}
	if err != nil {
		return err
	}
	if room.Has(id) {
		c.emitter.Send(id, model.NewEvent(model.EventResponseRequestToJoin, model.AcceptedPayload{Accepted: true}))
		return nil
	}
	if room.IsFull() {
		c.reject(id, roomID, "room full")
		return nil
	}

	if player.InRoom() {
		if err := c.leaveLocked(ctx, id, player.RoomID); err != nil {
			return err
		}
	}

	room, err = c.rooms.AssignPlayer(ctx, id, roomID)
	if errors.Is(err, model.ErrRoomFull) {
		c.reject(id, roomID, "room full")
		return nil
	}
	if err != nil {
		return err
	}
	if err := c.players.AssignRoom(ctx, id, roomID); err != nil {
		return err
	}

	c.emitter.Send(id, model.NewEvent(model.EventResponseRequestToJoin, model.AcceptedPayload{Accepted: true}))
	c.logger.Info("player joined room",
		slog.String("player_id", string(id)),
		slog.String("room_id", string(roomID)),
		slog.Int("size", room.Size()),
	)

	if room.IsFull() {
		c.emitter.Broadcast(roomID, model.Signal(model.EventGameReady))
	}
	return nil
}

func (c *Coordinator) reject(id model.PlayerID, roomID model.RoomID, reason string) {
	c.emitter.Send(id, model.NewEvent(model.EventResponseRequestToJoin, model.AcceptedPayload{Accepted: false}))
	c.logger.Info("join rejected",
		slog.String("player_id", string(id)),
		slog.String("room_id", string(roomID)),
		slog.String("reason", reason),
	)
}

// Ready marks the player ready and starts a round once the whole room is
func (c *Coordinator) Ready(ctx context.Context, id model.PlayerID, roomID model.RoomID) error {
	unlock := c.locks.lock(roomID)
	room, err := c.markReady(ctx, id, roomID)
	if err != nil {
		unlock()
		return err
	}

	c.emitter.Send(id, model.NewEvent(model.EventPlayerReadyResponse, model.AcceptedPayload{Accepted: true}))
	c.emitter.Broadcast(roomID, model.Signal(model.EventOpponentReady), id)

	start, err := c.readyToStart(ctx, room)
	unlock()
	if err != nil || !start {
		return err
	}
	return c.startRound(ctx, roomID)
}

// PlayAgain marks the player ready for another round. Until everyone
// agrees the others are only told about it.
func (c *Coordinator) PlayAgain(ctx context.Context, id model.PlayerID, roomID model.RoomID) error {
	unlock := c.locks.lock(roomID)
	room, err := c.markReady(ctx, id, roomID)
	if err != nil {
		unlock()
		return err
	}

	allReady, err := c.allReady(ctx, room)
	if err != nil {
		unlock()
		return err
	}
	if !allReady {
		c.emitter.Broadcast(roomID, model.Signal(model.EventOpponentWantsToPlayAgain), id)
		unlock()
		return nil
	}
	if !c.claimRoundStart(roomID) {
		unlock()
		c.logger.Debug("round start already underway",
			slog.String("player_id", string(id)),
			slog.String("room_id", string(roomID)),
		)
		return nil
	}

	c.emitter.Broadcast(roomID, model.Signal(model.EventResetAndGetReady))
	unlock()
	return c.startRound(ctx, roomID)
}

// markReady sets the player's ready flag. Callers hold the room lock.
func (c *Coordinator) markReady(ctx context.Context, id model.PlayerID, roomID model.RoomID) (*model.Room, error) {
	room, err := c.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.Has(id) {
		return nil, model.ErrNotInRoom
	}

	_, err = c.players.Update(ctx, id, func(p *model.Player) error {
		p.IsReady = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("player ready",
		slog.String("player_id", string(id)),
		slog.String("room_id", string(roomID)),
	)
	return room, nil
}

// allReady reports whether the room is full and every member is ready
func (c *Coordinator) allReady(ctx context.Context, room *model.Room) (bool, error) {
	if !room.IsFull() {
		return false, nil
	}
	members, err := c.players.GetMany(ctx, room.Members)
	if err != nil {
		return false, err
	}
	if len(members) != room.Size() {
		return false, nil
	}
	for _, m := range members {
		if !m.IsReady {
			return false, nil
		}
	}
	return true, nil
}

// readyToStart claims the room's round start if everyone is ready and
// no start is already underway
func (c *Coordinator) readyToStart(ctx context.Context, room *model.Room) (bool, error) {
	allReady, err := c.allReady(ctx, room)
	if err != nil || !allReady {
		return false, err
	}
	if !c.claimRoundStart(room.ID) {
		c.logger.Debug("round start already underway", slog.String("room_id", string(room.ID)))
		return false, nil
	}
	return true, nil
}

// Leave takes the player out of a room and clears their game state.
// A room that no longer exists is ignored; naming a room the player is
// not seated in changes nothing and returns ErrNotInRoom.
func (c *Coordinator) Leave(ctx context.Context, id model.PlayerID, roomID model.RoomID) error {
	unlock := c.locks.lock(roomID)
	defer unlock()

	room, err := c.rooms.GetRoom(ctx, roomID)
	if errors.Is(err, model.ErrRoomNotFound) {
		c.logger.Debug("leave for missing room",
			slog.String("player_id", string(id)),
			slog.String("room_id", string(roomID)),
		)
		return nil
	}
	if err != nil {
		return err
	}
	if !room.Has(id) {
		return model.ErrNotInRoom
	}
	return c.leaveLocked(ctx, id, roomID)
}

// leaveLocked removes the player from the room. Callers hold the room
// lock. Nothing about the player changes unless they were a member.
func (c *Coordinator) leaveLocked(ctx context.Context, id model.PlayerID, roomID model.RoomID) error {
	removed, err := c.rooms.RemovePlayer(ctx, id, roomID)
	if err != nil || !removed {
		return err
	}

	_, err = c.players.Update(ctx, id, func(p *model.Player) error {
		p.Reset()
		if p.RoomID == roomID {
			p.RoomID = ""
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.emitter.Broadcast(roomID, model.Signal(model.EventOpponentLeft), id)
	c.logger.Info("player left room",
		slog.String("player_id", string(id)),
		slog.String("room_id", string(roomID)),
	)
	return nil
}

// UpdateScore records the player's progress and sends the room's
// scoreboard to every member
func (c *Coordinator) UpdateScore(ctx context.Context, id model.PlayerID, points int, words []string) error {
	player, unlock, err := c.lockPlayerRoom(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if !player.InRoom() {
		return model.ErrNotInRoom
	}
	room, err := c.rooms.GetRoom(ctx, player.RoomID)
	if err != nil {
		return err
	}

	_, err = c.players.Update(ctx, id, func(p *model.Player) error {
		p.Score = points
		p.SetWords(words)
		return nil
	})
	if err != nil {
		return err
	}

	members, err := c.players.GetMany(ctx, room.Members)
	if err != nil {
		return err
	}

	standings := make(map[model.PlayerID]model.Standing, len(members))
	for _, m := range members {
		standings[m.ID] = model.Standing{Score: m.Score, Words: m.WordsFound}
	}
	event := model.NewEvent(model.EventScoreboardUpdate, model.ScoreboardPayload{Standings: standings})
	for _, m := range members {
		c.emitter.Send(m.ID, event)
	}
	return nil
}

// Ping echoes the client's timestamp. Unknown players are ignored since
// a ping can race a disconnect.
func (c *Coordinator) Ping(ctx context.Context, id model.PlayerID, timestamp float64) error {
	exists, err := c.players.Exists(ctx, id)
	if err != nil || !exists {
		return err
	}
	c.emitter.Send(id, model.NewEvent(model.EventPingFromServer, model.PingPayload{Timestamp: timestamp}))
	return nil
}

// PingSent records that the transport just pinged the player
func (c *Coordinator) PingSent(ctx context.Context, id model.PlayerID) error {
	now := c.clock.Now()
	_, err := c.players.Update(ctx, id, func(p *model.Player) error {
		p.PendingPingAt = &now
		return nil
	})
	if errors.Is(err, model.ErrPlayerNotFound) {
		return nil
	}
	return err
}

// PongReceived completes a transport ping and updates the player's latency
func (c *Coordinator) PongReceived(ctx context.Context, id model.PlayerID) error {
	_, err := c.players.Update(ctx, id, func(p *model.Player) error {
		if p.PendingPingAt == nil {
			return nil
		}
		p.LatencyMs = float64(c.clock.Since(*p.PendingPingAt).Microseconds()) / 1000
		p.PendingPingAt = nil
		return nil
	})
	if errors.Is(err, model.ErrPlayerNotFound) {
		return nil
	}
	return err
}
