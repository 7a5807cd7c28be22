// internal/filter/filter.go
//
// Candidate filtering: reduce a word list to the words consistent with a Constraint.
// Two implementations share one contract and must return identical ordered results:
//   - Scalar: per-character test via Constraint.Satisfies.
//   - Lanes:  the constraint is compiled to a lane program and evaluated over
//             8-byte lane vectors, 64 words per block (see lanes.go).
//
// Both are pure and order-preserving. Empty input yields an empty, non-nil slice.
package filter

import (
	"fmt"
	"strings"

	"github.com/robalobadob/wordle/apps/solver/internal/constraint"
)

// Filter returns the words that satisfy c, in input order.
type Filter interface {
	Filter(words []string, c constraint.Constraint) []string
}

// Kind names a Filter implementation in configuration.
type Kind string

const (
	KindScalar Kind = "scalar"
	KindLanes  Kind = "lanes"
)

// Parse maps a configuration value onto a Kind.
func Parse(name string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(name))); k {
	case KindScalar, KindLanes:
		return k, nil
	case "":
		return KindLanes, nil
	default:
		return "", fmt.Errorf("unknown filter %q (want scalar or lanes)", name)
	}
}

// New returns the implementation for k. Unknown kinds get Lanes.
func New(k Kind) Filter {
	if k == KindScalar {
		return Scalar{}
	}
	return Lanes{}
}

// Scalar is the reference implementation.
type Scalar struct{}

func (Scalar) Filter(words []string, c constraint.Constraint) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if c.Satisfies(w) {
			out = append(out, w)
		}
	}
	return out
}
