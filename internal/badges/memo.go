package badges

import (
	"slices"
	"sync"
)

type memoKey struct {
	userID        string
	count, points int
}

// Memo caches evaluations per (user, count, points). Since the totals are
// part of the key a stale count never returns a stale set, but entries for
// old totals pile up; callers drop them with Invalidate when a user's
// achievements change.
type Memo struct {
	ladder Ladder

	mu      sync.RWMutex
	entries map[memoKey][]Badge
}

func NewMemo(ladder Ladder) *Memo {
	if ladder == nil {
		ladder = DefaultLadder
	}

	return &Memo{ladder: ladder, entries: map[memoKey][]Badge{}}
}

// Evaluate returns a copy the caller may modify.
func (m *Memo) Evaluate(userID string, count, points int) []Badge {
	k := memoKey{userID: userID, count: count, points: points}

	m.mu.RLock()
	b, ok := m.entries[k]
	m.mu.RUnlock()
	if ok {
		return slices.Clone(b)
	}

	b = m.ladder.Evaluate(count, points)

	m.mu.Lock()
	m.entries[k] = b
	m.mu.Unlock()

	return slices.Clone(b)
}

// Count fits leaderboard.BadgeCounter; it is not memoized since it has no
// user key.
func (m *Memo) Count(count, points int) int {
	return m.ladder.Count(count, points)
}

func (m *Memo) Invalidate(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k := range m.entries {
		if k.userID == userID {
			delete(m.entries, k)
		}
	}
}

func (m *Memo) Reset() {
	m.mu.Lock()
	m.entries = map[memoKey][]Badge{}
	m.mu.Unlock()
}

// Len is the number of cached evaluations.
func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}
