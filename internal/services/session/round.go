package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/anagrams-go/internal/model"
)

// startRound fetches round data and hands it to the room. The caller
// must have claimed the room's round start; the claim is released here.
//
// The room lock is not held while waiting on the provider. Members may
// leave in the meantime, so the room is re-read before broadcasting and
// only those still present are reset.
func (c *Coordinator) startRound(ctx context.Context, roomID model.RoomID) error {
	defer c.releaseRoundStart(roomID)

	data, err := c.fetchRoundData(ctx)
	if err != nil {
		c.logger.Error("round start failed",
			slog.String("room_id", string(roomID)),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("start round in room %s: %w", roomID, err)
	}

	unlock := c.locks.lock(roomID)
	defer unlock()

	room, err := c.rooms.GetRoom(ctx, roomID)
	if errors.Is(err, model.ErrRoomNotFound) {
		c.logger.Info("room closed before round data arrived", slog.String("room_id", string(roomID)))
		return nil
	}
	if err != nil {
		return err
	}

	c.emitter.Broadcast(roomID, model.NewEvent(model.EventDataReady, data))

	for _, member := range room.Members {
		if err := c.players.Reset(ctx, member); err != nil && !errors.Is(err, model.ErrPlayerNotFound) {
			return err
		}
	}
	room, err = c.rooms.RecordRound(ctx, roomID)
	if err != nil {
		return err
	}

	c.logger.Info("round started",
		slog.String("room_id", string(roomID)),
		slog.Int("round", room.Rounds),
		slog.Int("letters", len(data.Letters)),
		slog.Int("anagrams", len(data.Anagrams)),
	)
	return nil
}

// fetchRoundData picks a word and its anagrams. A word with no anagrams
// would give an unplayable round, so it counts as unavailable data just
// like a provider failure.
func (c *Coordinator) fetchRoundData(ctx context.Context) (model.RoundDataPayload, error) {
	word, err := c.provider.RandomWord(ctx, c.cfg.WordLength)
	if err != nil {
		return model.RoundDataPayload{}, roundDataError("fetch word", err)
	}
	anagrams, err := c.provider.Anagrams(ctx, word)
	if err != nil {
		return model.RoundDataPayload{}, roundDataError("fetch anagrams", err)
	}
	if len(anagrams) == 0 {
		return model.RoundDataPayload{}, fmt.Errorf("no anagrams for %q: %w", word, model.ErrRoundDataUnavailable)
	}

	return model.RoundDataPayload{
		Letters:  c.shuffleLetters(word),
		Anagrams: anagrams,
	}, nil
}

func (c *Coordinator) shuffleLetters(word string) []string {
	letters := strings.Split(word, "")
	c.random.Shuffle(len(letters), func(i, j int) {
		letters[i], letters[j] = letters[j], letters[i]
	})
	return letters
}

func roundDataError(op string, err error) error {
	if errors.Is(err, model.ErrRoundDataUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, model.ErrRoundDataUnavailable, err)
}
