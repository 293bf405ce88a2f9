package session

import (
	"context"

	"github.com/mcoot/anagrams-go/internal/model"
)

// RoomInfo is a point-in-time view of a room and its members
type RoomInfo struct {
	Room    *model.Room
	Members []*model.Player
	State   model.RoomState
}

// RoomInfo returns a snapshot of the room taken under its lock
func (c *Coordinator) RoomInfo(ctx context.Context, roomID model.RoomID) (*RoomInfo, error) {
	unlock := c.locks.lock(roomID)
	defer unlock()

	room, err := c.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	members, err := c.players.GetMany(ctx, room.Members)
	if err != nil {
		return nil, err
	}
	return &RoomInfo{
		Room:    room,
		Members: members,
		State:   model.DeriveRoomState(room, members),
	}, nil
}
