// internal/store/store.go
//
// Persistence interfaces for sessions, users and daily results.
// Two implementations:
//   - memory.go: maps guarded by an RWMutex; state is lost on restart.
//   - sqlite.go: database/sql over mattn/go-sqlite3 with embedded migrations.
//
// Sessions are persisted as their turns; loading replays the turns to rebuild
// the cumulative constraint, so the constraint itself is never stored.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/wordle/apps/solver/internal/game"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username taken")

	// ErrConflict rejects a Save built from a stale copy of the session.
	ErrConflict = errors.New("session changed since it was loaded")
)

// Store defines the persistence interface for solver sessions.
type Store interface {
	// Save persists or updates a session. The session's turns must extend the
	// stored ones; otherwise Save fails with ErrConflict and stores nothing.
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*game.Session, error)

	// ListByOwner returns an owner's sessions, newest first.
	ListByOwner(ctx context.Context, owner string, limit int) ([]game.View, error)
}

// User matches the users table shape.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	GamesPlayed  int       `json:"gamesPlayed"`
	Wins         int       `json:"wins"`
	Streak       int       `json:"streak"`
}

// Users stores accounts and their win statistics.
type Users interface {
	// CreateUser inserts a user, or fails with ErrUsernameTaken (case-insensitive).
	CreateUser(ctx context.Context, id, username, passwordHash string) (*User, error)
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)

	// BumpStats counts a finished session: games played, wins and the current streak.
	BumpStats(ctx context.Context, id string, won bool) error
}

// DailyResult is one user's finished daily session.
type DailyResult struct {
	UserID    string    `json:"userId"`
	Date      string    `json:"date"`
	SessionID string    `json:"sessionId"`
	Guesses   int       `json:"guesses"`
	Won       bool      `json:"won"`
	CreatedAt time.Time `json:"createdAt"`
}

// Daily stores daily results, one per user and date.
type Daily interface {
	DailyPlayed(ctx context.Context, userID, date string) (bool, error)

	// RecordDaily inserts r; a second result for the same user and date is ignored.
	RecordDaily(ctx context.Context, r DailyResult) error

	// DailyLeaderboard orders wins first, then fewer guesses, then earlier finishes.
	DailyLeaderboard(ctx context.Context, date string, limit int) ([]DailyResult, error)
}

// Backend is everything the HTTP server persists.
type Backend interface {
	Store
	Users
	Daily
	Close() error
}

// extends reports ErrConflict unless next starts with every stored turn.
func extends(id string, stored, next []game.Turn) error {
	if len(stored) > len(next) {
		return fmt.Errorf("%w: session %s has %d stored turns, save carries %d", ErrConflict, id, len(stored), len(next))
	}
	for i, t := range stored {
		if t != next[i] {
			return fmt.Errorf("%w: session %s turn %d is %s/%s, save carries %s/%s",
				ErrConflict, id, i, t.Guess, t.Reply, next[i].Guess, next[i].Reply)
		}
	}
	return nil
}

const defaultLimit = 50

func clampLimit(n int) int {
	if n <= 0 || n > 500 {
		return defaultLimit
	}
	return n
}
