// internal/game/engine.go
//
// Session engine.
// Responsibilities:
//   - Create sessions in assist, practice or daily mode.
//   - Validate and apply turns (word length, a–z letters, g/y/b reply, allowed list).
//   - Fold every turn into the session's cumulative Constraint.
//   - Track state transitions: playing → won/lost.
//
// Notes:
//   - A rejected turn leaves the session exactly as it was, so callers can re-prompt.
//   - Each turn produces a new Constraint value; earlier values are never touched.
//   - Session IDs are random UUIDs.
package game

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/wordle/apps/solver/internal/constraint"
	"github.com/robalobadob/wordle/apps/solver/internal/feedback"
	"github.com/robalobadob/wordle/apps/solver/internal/filter"
	"github.com/robalobadob/wordle/apps/solver/internal/word"
)

const defaultMaxTurns = 6

// Lexicon answers membership questions about a word list.
type Lexicon interface {
	Contains(w string) bool
}

// Options configures New.
type Options struct {
	Mode     Mode
	Length   int
	MaxTurns int // 0 = default (6); negative = unlimited
	Owner    string
	Answer   string    // practice only: fixed answer, mostly for tests
	Salt     string    // daily only
	Now      time.Time // zero = time.Now()
}

// New constructs a session. answers supplies hidden answers for practice and daily modes.
func New(opts Options, answers []string) (*Session, error) {
	if opts.Length == 0 {
		opts.Length = word.DefaultLength
	}
	if err := word.CheckLength(opts.Length); err != nil {
		return nil, err
	}
	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, fmt.Errorf("%w %q", err, opts.Mode)
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	maxTurns := opts.MaxTurns
	switch {
	case maxTurns == 0:
		maxTurns = defaultMaxTurns
	case maxTurns < 0:
		maxTurns = 0
	}

	s := &Session{
		ID:        uuid.New().String(),
		Owner:     opts.Owner,
		Mode:      mode,
		Length:    opts.Length,
		MaxTurns:  maxTurns,
		Turns:     []Turn{},
		CreatedAt: now.UTC(),
	}

	switch mode {
	case ModePractice:
		s.Answer = strings.ToLower(strings.TrimSpace(opts.Answer))
		if s.Answer == "" {
			if len(answers) == 0 {
				return nil, fmt.Errorf("practice session: no answers available")
			}
			s.Answer = pick(answers)
		}
	case ModeDaily:
		s.Date = DateKey(now)
		s.Answer = DailyAnswer(answers, now, opts.Salt)
		if s.Answer == "" {
			return nil, fmt.Errorf("daily session: no answers available")
		}
	}
	if s.Answer != "" {
		if err := word.Validate(s.Answer, s.Length); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ApplyFeedback records a guess with the reply a human reported for it (assist mode).
func (s *Session) ApplyFeedback(guess, reply string) (feedback.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Mode != ModeAssist {
		return feedback.Response{}, ErrWrongMode
	}
	if s.Finished {
		return feedback.Response{}, ErrFinished
	}
	guess = normalize(guess)
	if err := word.Validate(guess, s.Length); err != nil {
		return feedback.Response{}, err
	}
	r, err := feedback.Parse(reply, s.Length)
	if err != nil {
		return feedback.Response{}, err
	}
	if err := s.apply(guess, r); err != nil {
		return feedback.Response{}, err
	}
	return r, nil
}

// ApplyGuess scores a guess against the hidden answer (practice and daily modes).
// allowed may be nil to accept any well-formed word.
func (s *Session) ApplyGuess(guess string, allowed Lexicon) (feedback.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Mode == ModeAssist {
		return feedback.Response{}, ErrWrongMode
	}
	if s.Finished {
		return feedback.Response{}, ErrFinished
	}
	guess = normalize(guess)
	if err := word.Validate(guess, s.Length); err != nil {
		return feedback.Response{}, err
	}
	if allowed != nil && !allowed.Contains(guess) {
		return feedback.Response{}, fmt.Errorf("%w: %q", ErrNotAllowed, guess)
	}
	r, err := feedback.Derive(s.Answer, guess)
	if err != nil {
		return feedback.Response{}, err
	}
	if err := s.apply(guess, r); err != nil {
		return feedback.Response{}, err
	}
	return r, nil
}

// apply merges a validated turn. Callers hold s.mu.
func (s *Session) apply(guess string, r feedback.Response) error {
	next, err := constraint.Merge(s.constraint, r, guess)
	if err != nil {
		return err
	}
	s.constraint = next
	s.Turns = append(s.Turns, Turn{Guess: guess, Reply: r.String()})

	if r.Solved() {
		s.Finished, s.Won = true, true
	} else if s.MaxTurns > 0 && len(s.Turns) >= s.MaxTurns {
		s.Finished = true
	}
	return nil
}

// Replay rebuilds the constraint and finished/won flags from s.Turns.
// Stores call it after loading a session.
func (s *Session) Replay() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := make([]constraint.Turn, 0, len(s.Turns))
	won := false
	for _, t := range s.Turns {
		r, err := feedback.Parse(t.Reply, s.Length)
		if err != nil {
			return fmt.Errorf("session %s turn %q: %w", s.ID, t.Guess, err)
		}
		turns = append(turns, constraint.Turn{Guess: t.Guess, Response: r})
		won = r.Solved()
	}
	c, err := constraint.Fold(turns)
	if err != nil {
		return fmt.Errorf("session %s: %w", s.ID, err)
	}
	s.constraint = c
	s.Won = won
	s.Finished = won || (s.MaxTurns > 0 && len(s.Turns) >= s.MaxTurns)
	return nil
}

// Constraint returns the cumulative constraint.
func (s *Session) Constraint() constraint.Constraint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.constraint
}

// State reports "playing", "won" or "lost".
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Session) state() string {
	if s.Finished {
		if s.Won {
			return StateWon
		}
		return StateLost
	}
	return StatePlaying
}

// Candidates filters words by the session's constraint.
func (s *Session) Candidates(words []string, f filter.Filter) []string {
	return f.Filter(words, s.Constraint())
}

// View snapshots the session for output.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		ID:         s.ID,
		Mode:       s.Mode,
		Length:     s.Length,
		MaxTurns:   s.MaxTurns,
		Date:       s.Date,
		Turns:      append([]Turn{}, s.Turns...),
		State:      s.state(),
		Constraint: s.constraint.String(),
		CreatedAt:  s.CreatedAt,
	}
	if s.Finished {
		v.Answer = s.Answer
	}
	return v
}

func normalize(w string) string { return strings.ToLower(strings.TrimSpace(w)) }

// pick returns a cryptographically random element of ws.
func pick(ws []string) string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	n := uint64(0)
	for _, x := range b {
		n = n<<8 | uint64(x)
	}
	return ws[n%uint64(len(ws))]
}
