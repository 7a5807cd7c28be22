// internal/scorer/scorer.go
//
// One-ply guess scoring.
// For every dictionary word (as a hypothetical guess) and every active word
// (as a hypothetical target) the scorer:
//   1. derives the response the target would give,
//   2. merges it into the base constraint,
//   3. counts the active words that survive the result,
// and accumulates those outcomes into one Record per guess.
//
// The outer loop is a parallel map: each worker owns the Record of the guess it
// is scoring, and dictionary, active and base are only read during a pass.
// Callers must not mutate those slices until Score returns.
package scorer

import (
	"context"
	"math"
	"math/bits"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordle/apps/solver/internal/constraint"
	"github.com/robalobadob/wordle/apps/solver/internal/feedback"
	"github.com/robalobadob/wordle/apps/solver/internal/filter"
	"github.com/robalobadob/wordle/apps/solver/internal/word"
)

// Scorer holds the settings of scoring passes. It is safe for concurrent use.
type Scorer struct {
	length   int
	workers  int
	kind     filter.Kind
	progress func()
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithWorkers bounds the number of guesses scored at once. n < 1 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithFilter selects the candidate filter used for the inner counts.
func WithFilter(k filter.Kind) Option {
	return func(s *Scorer) { s.kind = k }
}

// WithProgress registers a callback invoked once per scored guess, from worker goroutines.
func WithProgress(fn func()) Option {
	return func(s *Scorer) { s.progress = fn }
}

// New returns a Scorer for words of the given length.
func New(length int, opts ...Option) *Scorer {
	s := &Scorer{
		length:  length,
		workers: runtime.GOMAXPROCS(0),
		kind:    filter.KindLanes,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Length is the word length this scorer accepts.
func (s *Scorer) Length() int { return s.length }

// Workers is the configured pool size.
func (s *Scorer) Workers() int { return s.workers }

// counter returns the number of active words satisfying a constraint.
type counter func(constraint.Constraint) int

func (s *Scorer) counter(active []string) (counter, error) {
	if s.kind == filter.KindScalar {
		f := filter.New(filter.KindScalar)
		return func(c constraint.Constraint) int { return len(f.Filter(active, c)) }, nil
	}
	b, err := filter.NewBatch(active, s.length)
	if err != nil {
		return nil, err
	}
	return b.Count, nil
}

// Score evaluates every word of dictionary as the next guess against every
// word of active, starting from base. Entries come back in dictionary order.
//
// Every word must have the scorer's length; the first that does not fails the
// whole pass with a *word.EncodingError before any work starts. An empty
// dictionary or active set yields an empty result. Cancelling ctx stops the
// pass between dictionary words and returns ctx.Err().
func (s *Scorer) Score(ctx context.Context, dictionary, active []string, base constraint.Constraint) ([]Entry, error) {
	if err := word.CheckLength(s.length); err != nil {
		return nil, err
	}
	if err := word.ValidateAll(dictionary, s.length); err != nil {
		return nil, err
	}
	if err := word.ValidateAll(active, s.length); err != nil {
		return nil, err
	}
	if len(dictionary) == 0 || len(active) == 0 {
		return []Entry{}, nil
	}

	count, err := s.counter(active)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	log.Debug().
		Int("dictionary", len(dictionary)).
		Int("active", len(active)).
		Int("workers", s.workers).
		Str("filter", string(s.kind)).
		Str("base", base.String()).
		Msg("scoring pass started")

	before := math.Log2(float64(len(active)))
	results := make([]Entry, len(dictionary))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, guess := range dictionary {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := evaluate(guess, active, base, count)
			if err != nil {
				return err
			}
			rec.BitsBefore = before
			results[i] = Entry{Word: guess, Index: i, Record: rec}
			if s.progress != nil {
				s.progress()
			}
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		log.Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("scoring pass aborted")
		return nil, err
	}

	log.Debug().Dur("elapsed", time.Since(start)).Msg("scoring pass finished")
	return results, nil
}

// evaluate scores one guess against every target. It shares nothing mutable
// with other calls.
func evaluate(guess string, active []string, base constraint.Constraint, count counter) (Record, error) {
	var rec Record
	for _, target := range active {
		r, err := feedback.Derive(target, guess)
		if err != nil {
			return Record{}, err
		}
		hyp, err := constraint.Merge(base, r, guess)
		if err != nil {
			return Record{}, err
		}
		reduced := count(hyp)

		rec.Targets++
		rec.Green += r.Greens()
		rec.Included += bits.OnesCount32(hyp.IncludedMask())
		rec.Excluded += bits.OnesCount32(hyp.ExcludedMask())
		rec.Rejected += len(active) - reduced
		if reduced > 0 {
			rec.BitsAfter += math.Log2(float64(reduced))
		}
	}
	return rec, nil
}
