package constraint

import (
	"github.com/robalobadob/wordle/apps/solver/internal/feedback"
	"github.com/robalobadob/wordle/apps/solver/internal/word"
)

// Turn is one guess and the feedback it received.
type Turn struct {
	Guess    string
	Response feedback.Response
}

// Merge folds one response for guess into base and returns the result.
//
// Per position i with letter g = guess[i]:
//   - Green:  g is included and fixed at i. A different letter already fixed at i is replaced.
//   - Yellow: g is included and avoided at i.
//   - Black:  g is excluded unless it is included by base or anywhere in this response.
//
// All inclusions of the response are applied before its exclusions, and the result
// never holds a letter in both sets.
func Merge(base Constraint, r feedback.Response, guess string) (Constraint, error) {
	if r.Len() != len(guess) {
		return base, &feedback.LengthMismatchError{Target: r.String(), Guess: guess}
	}
	if err := word.Validate(guess, len(guess)); err != nil {
		return base, err
	}

	out := base
	var black uint32
	for i := 0; i < len(guess); i++ {
		g := guess[i]
		bit := word.Bit(g)
		switch r.At(i) {
		case feedback.Green:
			out.included |= bit
			out.fixed[i] = g
		case feedback.Yellow:
			out.included |= bit
			out.avoided[i] |= bit
		default:
			black |= bit
		}
	}
	out.excluded = (out.excluded | black) &^ out.included
	return out, nil
}

// Combine unions two independently built constraints. Set-valued parts are
// commutative and associative; for fixed positions set in both, c2 wins.
func Combine(c1, c2 Constraint) Constraint {
	out := Constraint{included: c1.included | c2.included}
	out.excluded = (c1.excluded | c2.excluded) &^ out.included
	for i := range out.fixed {
		out.fixed[i] = c1.fixed[i]
		if c2.fixed[i] != 0 {
			out.fixed[i] = c2.fixed[i]
		}
		out.avoided[i] = c1.avoided[i] | c2.avoided[i]
	}
	return out
}

// Fold merges turns in order, starting from the identity.
func Fold(turns []Turn) (Constraint, error) {
	c := Identity()
	for _, t := range turns {
		next, err := Merge(c, t.Response, t.Guess)
		if err != nil {
			return Constraint{}, err
		}
		c = next
	}
	return c, nil
}
