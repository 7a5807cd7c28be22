package feedback

import (
	"strings"

	"github.com/robalobadob/wordle/apps/solver/internal/word"
)

// Derive scores guess against target with the two-pass Wordle algorithm.
//
// Pass 1:
//   - Count every letter of the target.
//   - Mark exact matches Green and spend one occurrence of that letter.
//
// Pass 2:
//   - For each remaining position: Yellow while the letter still has budget, else Black.
//
// A repeated guess letter is therefore never tagged more often than it occurs in the target.
func Derive(target, guess string) (Response, error) {
	if len(target) != len(guess) {
		return Response{}, &LengthMismatchError{Target: target, Guess: guess}
	}
	if err := word.Validate(target, len(target)); err != nil {
		return Response{}, err
	}
	if err := word.Validate(guess, len(guess)); err != nil {
		return Response{}, err
	}
	return derive(target, guess), nil
}

// derive assumes validated, equal-length inputs.
func derive(target, guess string) Response {
	n := len(guess)
	r := Response{n: uint8(n)}

	var budget [word.Alphabet]int8
	for i := 0; i < n; i++ {
		budget[target[i]-'a']++
	}

	for i := 0; i < n; i++ {
		if guess[i] == target[i] {
			r.tags[i] = Green
			budget[guess[i]-'a']--
		}
	}

	for i := 0; i < n; i++ {
		if r.tags[i] == Green {
			continue
		}
		j := guess[i] - 'a'
		if budget[j] > 0 {
			r.tags[i] = Yellow
			budget[j]--
		} else {
			r.tags[i] = Black
		}
	}
	return r
}

// Parse reads case-insensitive g/y/b notation of exactly length characters.
// It has no side effects, so a caller may simply prompt again on error.
func Parse(notation string, length int) (Response, error) {
	s := strings.ToLower(strings.TrimSpace(notation))
	if len(s) != length || length > word.MaxLength {
		return Response{}, &NotationError{Input: notation, Length: length, Got: len(s), Kind: ErrNotationLength}
	}
	r := Response{n: uint8(length)}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'g':
			r.tags[i] = Green
		case 'y':
			r.tags[i] = Yellow
		case 'b':
			r.tags[i] = Black
		default:
			return Response{}, &NotationError{Input: s, Length: length, Pos: i, Kind: ErrNotationChar}
		}
	}
	return r, nil
}
