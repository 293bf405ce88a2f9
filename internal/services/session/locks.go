package session

import (
	"slices"
	"sync"

	"github.com/mcoot/anagrams-go/internal/model"
)

// roomLocks serializes event handling per room. Entries are reference
// counted so rooms that come and go do not leak mutexes.
type roomLocks struct {
	mu    sync.Mutex
	locks map[model.RoomID]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[model.RoomID]*roomLock)}
}

// lock acquires the locks of every given room in a fixed order, so
// handlers touching two rooms cannot deadlock each other. Empty IDs are
// ignored. The returned func releases everything.
func (l *roomLocks) lock(ids ...model.RoomID) func() {
	ordered := make([]model.RoomID, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			ordered = append(ordered, id)
		}
	}
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	held := make([]*roomLock, 0, len(ordered))
	for _, id := range ordered {
		entry := l.acquire(id)
		entry.mu.Lock()
		held = append(held, entry)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.release(ordered[i])
		}
	}
}

func (l *roomLocks) acquire(id model.RoomID) *roomLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &roomLock{}
		l.locks[id] = entry
	}
	entry.refs++
	return entry
}

func (l *roomLocks) release(id model.RoomID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := l.locks[id]
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, id)
	}
}

func (l *roomLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
