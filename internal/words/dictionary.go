// internal/words/dictionary.go
//
// The two lists a solver session works from:
//   - Answers: words that can be the hidden solution (the initial active set).
//   - Allowed: every acceptable guess; always a superset of Answers.
//
// Open resolves the lists the same way in every entrypoint:
//   1. AnswersFile and AllowedFile both set: load each.
//   2. Only AllowedFile set: it serves as both lists.
//   3. Neither set: the embedded defaults from package assets.
package words

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/solver/assets"
)

// Source says where to find the lists.
type Source struct {
	AnswersFile string
	AllowedFile string
	Length      int
	Strict      bool
}

// Dictionary pairs the answer list with the allowed-guess list.
type Dictionary struct {
	Answers *List
	Allowed *List
}

// Open loads a Dictionary from src.
func Open(src Source) (*Dictionary, error) {
	var answers, allowed *List
	var err error

	switch {
	case src.AnswersFile != "" && src.AllowedFile != "":
		if answers, err = LoadFile(src.AnswersFile, src.Length, src.Strict); err != nil {
			return nil, err
		}
		if allowed, err = LoadFile(src.AllowedFile, src.Length, src.Strict); err != nil {
			return nil, err
		}
	case src.AllowedFile != "":
		if answers, err = LoadFile(src.AllowedFile, src.Length, src.Strict); err != nil {
			return nil, err
		}
		allowed = answers
	default:
		if answers, err = embedded(assets.AnswersFile, src); err != nil {
			return nil, err
		}
		if allowed, err = embedded(assets.AllowedFile, src); err != nil {
			return nil, err
		}
	}

	d := &Dictionary{Answers: answers, Allowed: answers.Union(allowed)}
	if d.Answers.Len() == 0 {
		return nil, fmt.Errorf("answers (length %d): %w", src.Length, ErrEmpty)
	}
	log.Info().
		Int("answers", d.Answers.Len()).
		Int("allowed", d.Allowed.Len()).
		Int("length", src.Length).
		Msg("word lists loaded")
	return d, nil
}

// embedded lists are five-letter words; other lengths load leniently so a
// session of a different length falls through to ErrEmpty instead of a line error.
func embedded(name string, src Source) (*List, error) {
	f, err := assets.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, "embedded "+name, src.Length, src.Strict && src.Length == 5)
}

// IsAllowed reports whether w may be guessed.
func (d *Dictionary) IsAllowed(w string) bool { return d.Allowed.Contains(w) }

// IsAnswer reports whether w can be a solution.
func (d *Dictionary) IsAnswer(w string) bool { return d.Answers.Contains(w) }

// Stats returns (answers, allowed) counts.
func (d *Dictionary) Stats() (answers int, allowed int) {
	return d.Answers.Len(), d.Allowed.Len()
}
