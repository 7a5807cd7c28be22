// internal/store/memory.go
//
// In-memory Backend.
// Used when no DB_PATH is configured, and in tests.
//
// Characteristics:
//   - Stores *game.Session pointers keyed by ID; Get returns the stored pointer.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robalobadob/wordle/apps/solver/internal/game"
)

type memory struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
	users    map[string]*User // keyed by ID
	daily    map[string]DailyResult
}

// NewMemoryStore constructs an empty in-memory Backend.
func NewMemoryStore() Backend {
	return &memory{
		sessions: make(map[string]*game.Session),
		users:    make(map[string]*User),
		daily:    make(map[string]DailyResult),
	}
}

func (m *memory) Close() error { return nil }

func (m *memory) Save(ctx context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.sessions[s.ID]; ok && old != s {
		if err := extends(s.ID, old.View().Turns, s.View().Turns); err != nil {
			return err
		}
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) ListByOwner(ctx context.Context, owner string, limit int) ([]game.View, error) {
	m.mu.RLock()
	var views []game.View
	for _, s := range m.sessions {
		if owner != "" && s.Owner == owner {
			views = append(views, s.View())
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(views, func(i, j int) bool {
		if !views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].CreatedAt.After(views[j].CreatedAt)
		}
		return views[i].ID < views[j].ID
	})
	if limit = clampLimit(limit); len(views) > limit {
		views = views[:limit]
	}
	if views == nil {
		views = []game.View{}
	}
	return views, nil
}

func (m *memory) CreateUser(ctx context.Context, id, username, hash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return nil, ErrUsernameTaken
		}
	}
	u := &User{ID: id, Username: username, PasswordHash: hash, CreatedAt: time.Now().UTC().Truncate(time.Second)}
	m.users[id] = u
	cp := *u
	return &cp, nil
}

func (m *memory) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memory) FindUserByID(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *memory) BumpStats(ctx context.Context, id string, won bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.GamesPlayed++
	if won {
		u.Wins++
		u.Streak++
	} else {
		u.Streak = 0
	}
	return nil
}

func dailyKey(userID, date string) string { return userID + "|" + date }

func (m *memory) DailyPlayed(ctx context.Context, userID, date string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.daily[dailyKey(userID, date)]
	return ok, nil
}

func (m *memory) RecordDaily(ctx context.Context, r DailyResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := dailyKey(r.UserID, r.Date)
	if _, ok := m.daily[k]; ok {
		return nil
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.daily[k] = r
	return nil
}

func (m *memory) DailyLeaderboard(ctx context.Context, date string, limit int) ([]DailyResult, error) {
	m.mu.RLock()
	out := []DailyResult{}
	for _, r := range m.daily {
		if r.Date == date {
			out = append(out, r)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Won != b.Won {
			return a.Won
		}
		if a.Guesses != b.Guesses {
			return a.Guesses < b.Guesses
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.UserID < b.UserID
	})
	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
