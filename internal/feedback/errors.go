package feedback

import (
	"errors"
	"fmt"
)

var (
	ErrLengthMismatch = errors.New("target and guess lengths differ")
	ErrNotationLength = errors.New("feedback has wrong length")
	ErrNotationChar   = errors.New("feedback must use only g, y or b")
)

// LengthMismatchError is returned by Derive for a target/guess pair of different lengths.
type LengthMismatchError struct {
	Target, Guess string
}

func (e *LengthMismatchError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: target %q (%d), guess %q (%d)", ErrLengthMismatch.Error(), e.Target, len(e.Target), e.Guess, len(e.Guess))
}

func (e *LengthMismatchError) Unwrap() error { return ErrLengthMismatch }

// NotationError reports malformed g/y/b feedback. Callers reading human input
// should treat it as recoverable and ask again.
type NotationError struct {
	Input  string
	Length int
	Got    int
	Pos    int
	Kind   error
}

func (e *NotationError) Error() string {
	if e == nil {
		return ""
	}
	if errors.Is(e.Kind, ErrNotationChar) {
		return fmt.Sprintf("%s: %q at position %d", e.Kind.Error(), e.Input[e.Pos], e.Pos+1)
	}
	return fmt.Sprintf("%s: got %d, want %d", e.Kind.Error(), e.Got, e.Length)
}

func (e *NotationError) Unwrap() error { return e.Kind }
