// internal/words/words.go
//
// Word list loading for the solver.
//
// Responsibilities:
//   - Read newline-delimited word lists (one word per line, '#' comments, blank lines ignored).
//   - Normalize to lowercase and enforce the session word length.
//   - Hold a list in input order plus an index keyed by the packed word code.
//
// Non-conforming lines are dropped in lenient mode and fail the load, with their
// line number, in strict mode. Lists handed to the engine are always uniform.
package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/robalobadob/wordle/apps/solver/internal/word"
)

// ErrEmpty is returned when a load keeps no words at all.
var ErrEmpty = errors.New("word list is empty")

// LineError reports a rejected line of a strict load.
type LineError struct {
	Source string
	Line   int
	Err    error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// List is an immutable, ordered, duplicate-free word list of one length.
type List struct {
	words  []string
	index  map[word.Packed]int
	codec  word.PackedCodec
	length int
}

// New ingests an in-memory slice. Every word must conform; duplicates are dropped.
func New(ws []string, length int) (*List, error) {
	if err := word.CheckLength(length); err != nil {
		return nil, err
	}
	l := newList(length, len(ws))
	for _, w := range ws {
		if err := word.Validate(w, length); err != nil {
			return nil, err
		}
		l.add(w)
	}
	return l, nil
}

// newList expects a length already accepted by word.CheckLength.
func newList(length, capacity int) *List {
	codec, _ := word.NewPackedCodec(length)
	return &List{
		words:  make([]string, 0, capacity),
		index:  make(map[word.Packed]int, capacity),
		codec:  codec,
		length: length,
	}
}

// add appends a validated word unless it is already present.
func (l *List) add(w string) {
	p, err := l.codec.Encode(w)
	if err != nil {
		return
	}
	if _, dup := l.index[p]; dup {
		return
	}
	l.index[p] = len(l.words)
	l.words = append(l.words, w)
}

// Load reads a list from r. source names r in errors.
func Load(r io.Reader, source string, length int, strict bool) (*List, error) {
	if err := word.CheckLength(length); err != nil {
		return nil, err
	}
	l := newList(length, 0)
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		w := strings.TrimSpace(strings.ToLower(sc.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if err := word.Validate(w, length); err != nil {
			if strict {
				return nil, &LineError{Source: source, Line: n, Err: err}
			}
			continue
		}
		l.add(w)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return l, nil
}

// LoadFile reads a list from a file on disk.
func LoadFile(path string, length int, strict bool) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, path, length, strict)
}

// Words returns the words in load order. The slice must not be modified.
func (l *List) Words() []string { return l.words }

func (l *List) Len() int    { return len(l.words) }
func (l *List) Length() int { return l.length }

// Contains reports whether w (any case) is in the list.
func (l *List) Contains(w string) bool { return l.Index(w) >= 0 }

// Index returns the position of w (any case), or -1.
func (l *List) Index(w string) int {
	p, err := l.codec.Encode(strings.ToLower(w))
	if err != nil {
		return -1
	}
	if i, ok := l.index[p]; ok {
		return i
	}
	return -1
}

// Random returns a cryptographically random word, or "" for an empty list.
func (l *List) Random() string {
	if len(l.words) == 0 {
		return ""
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(l.words))))
	if err != nil {
		return l.words[0]
	}
	return l.words[n.Int64()]
}

// Union returns a new list with l's words followed by the words of o not in l.
// Words of o with a different length are skipped.
func (l *List) Union(o *List) *List {
	u := newList(l.length, len(l.words)+len(o.words))
	for _, w := range l.words {
		u.add(w)
	}
	for _, w := range o.words {
		u.add(w)
	}
	return u
}
