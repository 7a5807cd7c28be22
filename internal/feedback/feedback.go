// internal/feedback/feedback.go
//
// Per-letter feedback for a guess against a target.
// Defines:
//   - Tag: Green (right letter, right place), Yellow (present elsewhere), Black (no budget left).
//   - Response: an immutable, fixed-capacity sequence of Tags aligned with the guess.
//
// Responses are produced by Derive (engine side) or Parse (human g/y/b notation).
package feedback

import (
	"strings"

	"github.com/robalobadob/wordle/apps/solver/internal/word"
)

// Tag classifies one guessed letter.
type Tag uint8

const (
	Black Tag = iota
	Yellow
	Green
)

func (t Tag) String() string {
	switch t {
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	default:
		return "black"
	}
}

// Notation returns the single-character form used in feedback strings.
func (t Tag) Notation() byte {
	switch t {
	case Green:
		return 'g'
	case Yellow:
		return 'y'
	default:
		return 'b'
	}
}

// Response is a value type; copies never share state.
type Response struct {
	tags [word.MaxLength]Tag
	n    uint8
}

// Len is the number of positions.
func (r Response) Len() int { return int(r.n) }

// At returns the tag at position i.
func (r Response) At(i int) Tag { return r.tags[i] }

// Tags returns a fresh slice of the tags.
func (r Response) Tags() []Tag {
	out := make([]Tag, r.n)
	copy(out, r.tags[:r.n])
	return out
}

// Greens counts Green positions.
func (r Response) Greens() int {
	n := 0
	for _, t := range r.tags[:r.n] {
		if t == Green {
			n++
		}
	}
	return n
}

// Solved reports whether every position is Green.
func (r Response) Solved() bool { return r.n > 0 && r.Greens() == int(r.n) }

// String renders the response in g/y/b notation.
func (r Response) String() string {
	var b strings.Builder
	b.Grow(int(r.n))
	for _, t := range r.tags[:r.n] {
		b.WriteByte(t.Notation())
	}
	return b.String()
}

// FromTags builds a Response from an explicit tag list.
func FromTags(tags ...Tag) (Response, error) {
	if len(tags) > word.MaxLength {
		return Response{}, &NotationError{Kind: ErrNotationLength, Length: word.MaxLength, Got: len(tags)}
	}
	var r Response
	copy(r.tags[:], tags)
	r.n = uint8(len(tags))
	return r, nil
}
