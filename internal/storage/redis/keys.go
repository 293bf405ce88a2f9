package redis

import (
	"fmt"

	"github.com/mcoot/anagrams-go/internal/model"
)

// Key prefix for all session data
const keyPrefix = "anagrams"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// roomKey returns the Redis key for a Room
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomIndexKey returns the Redis key for the SET of live room IDs
func roomIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}

// allKeysPattern matches every key owned by this storage
func allKeysPattern() string {
	return keyPrefix + ":*"
}
