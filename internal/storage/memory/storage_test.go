package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/anagrams-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := model.NewPlayer("player-1")
	player.Score = 3
	player.WordsFound = []string{"cat"}

	err := s.storage.SavePlayer(s.ctx, player)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(player.ID, retrieved.ID)
	s.Equal(3, retrieved.Score)
	s.Equal([]string{"cat"}, retrieved.WordsFound)
}

func (s *StorageSuite) TestGetPlayerReturnsCopy() {
	_ = s.storage.SavePlayer(s.ctx, model.NewPlayer("player-1"))

	retrieved, _ := s.storage.GetPlayer(s.ctx, "player-1")
	retrieved.Score = 99
	retrieved.WordsFound = append(retrieved.WordsFound, "dog")

	again, _ := s.storage.GetPlayer(s.ctx, "player-1")
	s.Equal(0, again.Score)
	s.Empty(again.WordsFound)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestUpdatePlayer() {
	_ = s.storage.SavePlayer(s.ctx, model.NewPlayer("player-1"))

	updated, err := s.storage.UpdatePlayer(s.ctx, "player-1", func(p *model.Player) error {
		p.IsReady = true
		return nil
	})
	s.Require().NoError(err)
	s.True(updated.IsReady)

	retrieved, _ := s.storage.GetPlayer(s.ctx, "player-1")
	s.True(retrieved.IsReady)
}

func (s *StorageSuite) TestUpdatePlayerAbortsOnError() {
	_ = s.storage.SavePlayer(s.ctx, model.NewPlayer("player-1"))
	boom := errors.New("boom")

	_, err := s.storage.UpdatePlayer(s.ctx, "player-1", func(p *model.Player) error {
		p.Score = 10
		return boom
	})
	s.ErrorIs(err, boom)

	retrieved, _ := s.storage.GetPlayer(s.ctx, "player-1")
	s.Equal(0, retrieved.Score)
}

func (s *StorageSuite) TestUpdatePlayerNotFound() {
	_, err := s.storage.UpdatePlayer(s.ctx, "nonexistent", func(p *model.Player) error { return nil })
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestDeletePlayer() {
	_ = s.storage.SavePlayer(s.ctx, model.NewPlayer("player-1"))

	err := s.storage.DeletePlayer(s.ctx, "player-1")
	s.Require().NoError(err)

	exists, err := s.storage.PlayerExists(s.ctx, "player-1")
	s.Require().NoError(err)
	s.False(exists)
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := model.NewRoom("ABCD", 2, s.now())
	room.Add("player-1")

	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	retrieved, err := s.storage.GetRoom(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"player-1"}, retrieved.Members)
	s.Equal(2, retrieved.MaxPlayers)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "ZZZZ")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestUpdateRoom() {
	_ = s.storage.SaveRoom(s.ctx, model.NewRoom("ABCD", 2, s.now()))

	updated, err := s.storage.UpdateRoom(s.ctx, "ABCD", func(r *model.Room) error {
		r.Add("player-1")
		return nil
	})
	s.Require().NoError(err)
	s.True(updated.Has("player-1"))
}

func (s *StorageSuite) TestDeleteRoom() {
	_ = s.storage.SaveRoom(s.ctx, model.NewRoom("ABCD", 2, s.now()))

	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "ABCD"))

	exists, err := s.storage.RoomExists(s.ctx, "ABCD")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StorageSuite) TestListRoomIDsSorted() {
	_ = s.storage.SaveRoom(s.ctx, model.NewRoom("WXYZ", 2, s.now()))
	_ = s.storage.SaveRoom(s.ctx, model.NewRoom("ABCD", 2, s.now()))

	ids, err := s.storage.ListRoomIDs(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.RoomID{"ABCD", "WXYZ"}, ids)
}

func (s *StorageSuite) TestClear() {
	_ = s.storage.SavePlayer(s.ctx, model.NewPlayer("player-1"))
	_ = s.storage.SaveRoom(s.ctx, model.NewRoom("ABCD", 2, s.now()))

	s.Require().NoError(s.storage.Clear(s.ctx))

	ids, _ := s.storage.ListRoomIDs(s.ctx)
	s.Empty(ids)
	exists, _ := s.storage.PlayerExists(s.ctx, "player-1")
	s.False(exists)
}

func (s *StorageSuite) now() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}
