// internal/word/word.go
//
// Word validation and the compact word encodings used by the solver engine.
// Responsibilities:
//   - Validate that a word has the session length and only lowercase a–z letters.
//   - Provide two interchangeable encodings behind one Codec contract:
//       Packed (5 bits per letter in a uint64) and Lanes (one byte per letter in an 8-lane vector).
//
// Notes:
//   - Word length is fixed per engine instance and bounded by LaneWidth.
//   - Validation errors are *EncodingError values wrapping ErrEncoding.
package word

import (
	"errors"
	"fmt"
)

const (
	// LaneWidth is the number of byte lanes in a Lanes vector.
	LaneWidth = 8

	// MaxLength is the longest word either codec can represent.
	MaxLength = LaneWidth

	// DefaultLength is the classic Wordle length.
	DefaultLength = 5

	// Alphabet is the number of distinct letters.
	Alphabet = 26
)

// ErrEncoding is the kind of every word validation failure.
var ErrEncoding = errors.New("invalid word")

// EncodingError reports a word that cannot be encoded at the session length.
type EncodingError struct {
	Word   string
	Length int
	Reason string
}

func (e *EncodingError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %q: %s", ErrEncoding.Error(), e.Word, e.Reason)
}

func (e *EncodingError) Unwrap() error { return ErrEncoding }

// CheckLength reports whether length is usable by the codecs.
func CheckLength(length int) error {
	if length < 1 || length > MaxLength {
		return fmt.Errorf("word length %d out of range 1..%d", length, MaxLength)
	}
	return nil
}

// Validate checks that w is exactly length lowercase ASCII letters.
func Validate(w string, length int) error {
	if len(w) != length {
		return &EncodingError{Word: w, Length: length, Reason: fmt.Sprintf("length %d, want %d", len(w), length)}
	}
	if length > MaxLength {
		return &EncodingError{Word: w, Length: length, Reason: fmt.Sprintf("longer than %d letters", MaxLength)}
	}
	for i := 0; i < len(w); i++ {
		if !IsLetter(w[i]) {
			return &EncodingError{Word: w, Length: length, Reason: fmt.Sprintf("byte %q at position %d is not a-z", w[i], i)}
		}
	}
	return nil
}

// ValidateAll checks every word in ws and returns the first failure.
func ValidateAll(ws []string, length int) error {
	for _, w := range ws {
		if err := Validate(w, length); err != nil {
			return err
		}
	}
	return nil
}

// IsLetter reports whether b is a lowercase ASCII letter.
func IsLetter(b byte) bool { return b >= 'a' && b <= 'z' }

// Index maps a lowercase letter to 0..25.
func Index(b byte) int { return int(b - 'a') }

// Bit returns the single-letter mask for b within a 26-bit letter set.
func Bit(b byte) uint32 { return 1 << (b - 'a') }
