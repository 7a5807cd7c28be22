// internal/constraint/constraint.go
//
// Cumulative knowledge gathered from feedback.
// A Constraint has four parts:
//   - included: letters known to be somewhere in the answer (Green or Yellow seen).
//   - excluded: letters known to be absent (Black seen, never Green/Yellow).
//   - fixed:    position → letter confirmed by a Green.
//   - avoided:  (position, letter) pairs ruled out by a Yellow.
//
// Constraint is a value type. Merge and Combine return new values and never
// touch their inputs, so scoring branches can share a base constraint freely.
// The zero value is the identity: every word satisfies it.
package constraint

import (
	"strings"

	"github.com/robalobadob/wordle/apps/solver/internal/word"
)

// Constraint is safe to copy and compare with ==.
type Constraint struct {
	included uint32
	excluded uint32
	fixed    [word.MaxLength]byte   // 0 = unset
	avoided  [word.MaxLength]uint32 // letter mask per position
}

// Position pairs a 0-based position with a letter.
type Position struct {
	Pos    int
	Letter byte
}

// Identity returns the constraint every word satisfies.
func Identity() Constraint { return Constraint{} }

// IsIdentity reports whether c places no restriction at all.
func (c Constraint) IsIdentity() bool { return c == Constraint{} }

func (c Constraint) IncludedMask() uint32 { return c.included }
func (c Constraint) ExcludedMask() uint32 { return c.excluded }

// FixedAt returns the confirmed letter at position i, if any.
func (c Constraint) FixedAt(i int) (byte, bool) {
	if i < 0 || i >= word.MaxLength || c.fixed[i] == 0 {
		return 0, false
	}
	return c.fixed[i], true
}

// AvoidedAt returns the mask of letters ruled out at position i.
func (c Constraint) AvoidedAt(i int) uint32 {
	if i < 0 || i >= word.MaxLength {
		return 0
	}
	return c.avoided[i]
}

// Included lists included letters alphabetically.
func (c Constraint) Included() []byte { return maskLetters(c.included) }

// Excluded lists excluded letters alphabetically.
func (c Constraint) Excluded() []byte { return maskLetters(c.excluded) }

// Fixed returns a fresh position → letter map.
func (c Constraint) Fixed() map[int]byte {
	out := make(map[int]byte)
	for i, l := range c.fixed {
		if l != 0 {
			out[i] = l
		}
	}
	return out
}

// Avoided lists avoided pairs ordered by position then letter.
func (c Constraint) Avoided() []Position {
	var out []Position
	for i, m := range c.avoided {
		for _, l := range maskLetters(m) {
			out = append(out, Position{Pos: i, Letter: l})
		}
	}
	return out
}

// GreenCount is the number of positions with a confirmed letter.
func (c Constraint) GreenCount() int {
	n := 0
	for _, l := range c.fixed {
		if l != 0 {
			n++
		}
	}
	return n
}

// Satisfies is the scalar, per-character consistency test.
func (c Constraint) Satisfies(w string) bool {
	var present uint32
	for i := 0; i < len(w); i++ {
		b := w[i]
		if !word.IsLetter(b) {
			return false
		}
		if i < word.MaxLength {
			if f := c.fixed[i]; f != 0 && f != b {
				return false
			}
			if c.avoided[i]&word.Bit(b) != 0 {
				return false
			}
		}
		present |= word.Bit(b)
	}
	for i := len(w); i < word.MaxLength; i++ {
		if c.fixed[i] != 0 {
			return false
		}
	}
	return present&c.excluded == 0 && present&c.included == c.included
}

// String renders c as "+inc -exc =fixed !avoided" for logs.
func (c Constraint) String() string {
	var b strings.Builder
	b.WriteString("+")
	b.Write(c.Included())
	b.WriteString(" -")
	b.Write(c.Excluded())
	b.WriteString(" =")
	for _, l := range c.fixed {
		if l == 0 {
			b.WriteByte(word.LaneAny)
		} else {
			b.WriteByte(l)
		}
	}
	b.WriteString(" !")
	for i, p := range c.Avoided() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte(p.Letter)
		b.WriteByte('1' + byte(p.Pos))
	}
	return b.String()
}

func maskLetters(m uint32) []byte {
	out := make([]byte, 0, 8)
	for l := 0; l < word.Alphabet; l++ {
		if m&(1<<l) != 0 {
			out = append(out, byte('a'+l))
		}
	}
	return out
}

// Letters builds a letter mask; it is mostly useful in tests and filter programs.
func Letters(s string) uint32 {
	var m uint32
	for i := 0; i < len(s); i++ {
		if word.IsLetter(s[i]) {
			m |= word.Bit(s[i])
		}
	}
	return m
}
