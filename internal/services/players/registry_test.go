package players

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/anagrams-go/internal/model"
	"github.com/mcoot/anagrams-go/internal/storage/memory"
	"github.com/mcoot/anagrams-go/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	storage  *memory.Storage
	registry *Registry
	ctx      context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.storage = memory.New()
	s.registry = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *RegistrySuite) TestCreateInitialState() {
	p, err := s.registry.Create(s.ctx, "p1")
	s.Require().NoError(err)

	s.Equal(model.PlayerID("p1"), p.ID)
	s.Empty(p.RoomID)
	s.Zero(p.Score)
	s.Empty(p.WordsFound)
	s.False(p.IsReady)
}

func (s *RegistrySuite) TestCreateIsIdempotent() {
	_, err := s.registry.Create(s.ctx, "p1")
	s.Require().NoError(err)
	s.Require().NoError(s.registry.AssignRoom(s.ctx, "p1", "ABCD"))

	p, err := s.registry.Create(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(model.RoomID("ABCD"), p.RoomID)
}

func (s *RegistrySuite) TestExists() {
	exists, err := s.registry.Exists(s.ctx, "p1")
	s.Require().NoError(err)
	s.False(exists)

	_, _ = s.registry.Create(s.ctx, "p1")

	exists, err = s.registry.Exists(s.ctx, "p1")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *RegistrySuite) TestGetMissing() {
	_, err := s.registry.Get(s.ctx, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *RegistrySuite) TestDelete() {
	_, _ = s.registry.Create(s.ctx, "p1")

	s.Require().NoError(s.registry.Delete(s.ctx, "p1"))

	_, err := s.registry.Get(s.ctx, "p1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *RegistrySuite) TestDeleteMissingIsNoop() {
	s.NoError(s.registry.Delete(s.ctx, "missing"))
}

func (s *RegistrySuite) TestResetKeepsRoom() {
	_, _ = s.registry.Create(s.ctx, "p1")
	_, err := s.registry.Update(s.ctx, "p1", func(p *model.Player) error {
		p.RoomID = "ABCD"
		p.Score = 42
		p.SetWords([]string{"cat", "act"})
		p.IsReady = true
		return nil
	})
	s.Require().NoError(err)

	s.Require().NoError(s.registry.Reset(s.ctx, "p1"))

	p, err := s.registry.Get(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(model.RoomID("ABCD"), p.RoomID)
	s.Zero(p.Score)
	s.Empty(p.WordsFound)
	s.False(p.IsReady)
}

func (s *RegistrySuite) TestResetMissing() {
	s.ErrorIs(s.registry.Reset(s.ctx, "missing"), model.ErrPlayerNotFound)
}

func (s *RegistrySuite) TestAssignRoomClears() {
	_, _ = s.registry.Create(s.ctx, "p1")
	s.Require().NoError(s.registry.AssignRoom(s.ctx, "p1", "ABCD"))
	s.Require().NoError(s.registry.AssignRoom(s.ctx, "p1", ""))

	p, err := s.registry.Get(s.ctx, "p1")
	s.Require().NoError(err)
	s.False(p.InRoom())
}

func (s *RegistrySuite) TestGetManySkipsMissing() {
	_, _ = s.registry.Create(s.ctx, "p1")
	_, _ = s.registry.Create(s.ctx, "p3")

	players, err := s.registry.GetMany(s.ctx, []model.PlayerID{"p1", "p2", "p3"})
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal(model.PlayerID("p1"), players[0].ID)
	s.Equal(model.PlayerID("p3"), players[1].ID)
}
