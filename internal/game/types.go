// internal/game/types.go
//
// Core type definitions for solver sessions.
// Defines:
//   - Mode: how feedback reaches the session (typed by a human, or derived from a hidden answer).
//   - Turn: one guess and its g/y/b reply, the unit that gets persisted.
//   - Session: state for a single in-progress or finished solve.
package game

import (
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/wordle/apps/solver/internal/constraint"
)

// Mode selects where feedback comes from.
//   - "assist":   the caller plays Wordle elsewhere and reports each reply.
//   - "practice": a random hidden answer; replies are derived by the engine.
//   - "daily":    like practice, with the answer fixed per UTC date.
type Mode string

const (
	ModeAssist   Mode = "assist"
	ModePractice Mode = "practice"
	ModeDaily    Mode = "daily"
)

// Coarse session states.
const (
	StatePlaying = "playing"
	StateWon     = "won"
	StateLost    = "lost"
)

var (
	ErrFinished    = errors.New("session finished")
	ErrWrongMode   = errors.New("operation not available in this mode")
	ErrNotAllowed  = errors.New("not in word list")
	ErrUnknownMode = errors.New("unknown mode")
)

// ParseMode accepts a mode name; empty means assist.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeAssist, ModePractice, ModeDaily:
		return m, nil
	case "":
		return ModeAssist, nil
	default:
		return "", ErrUnknownMode
	}
}

// Turn is one guess with its reply in g/y/b notation.
type Turn struct {
	Guess string `json:"guess"`
	Reply string `json:"reply"`
}

// Session holds the state of one solve. Methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	ID        string
	Owner     string // user id; empty for guests
	Mode      Mode
	Length    int
	MaxTurns  int    // 0 = unlimited
	Answer    string // hidden answer; empty in assist mode
	Date      string // YYYY-MM-DD for daily sessions
	Turns     []Turn
	Finished  bool
	Won       bool
	CreatedAt time.Time

	constraint constraint.Constraint
}

// View is a read-only snapshot of a Session, safe to encode.
type View struct {
	ID         string    `json:"id"`
	Mode       Mode      `json:"mode"`
	Length     int       `json:"length"`
	MaxTurns   int       `json:"maxTurns"`
	Date       string    `json:"date,omitempty"`
	Turns      []Turn    `json:"turns"`
	State      string    `json:"state"`
	Constraint string    `json:"constraint"`
	CreatedAt  time.Time `json:"createdAt"`

	// Answer is only revealed once the session is over.
	Answer string `json:"answer,omitempty"`
}
