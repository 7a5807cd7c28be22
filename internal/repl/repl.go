// internal/repl/repl.go
//
// Interactive terminal solver.
// Each round:
//   1. read a guess (or a command),
//   2. read the g/y/b reply Wordle gave for it,
//   3. merge the turn into an assist session and print the surviving answers,
//   4. score the allowed list against the survivors and print the top guesses per metric.
//
// Invalid input is reported and asked for again; the session only changes on a
// well-formed turn. "quit", "exit" or EOF ends the loop.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/mitchellh/colorstring"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/robalobadob/wordle/apps/solver/internal/feedback"
	"github.com/robalobadob/wordle/apps/solver/internal/filter"
	"github.com/robalobadob/wordle/apps/solver/internal/game"
	"github.com/robalobadob/wordle/apps/solver/internal/scorer"
	"github.com/robalobadob/wordle/apps/solver/internal/word"
	"github.com/robalobadob/wordle/apps/solver/internal/words"
)

// showCandidates is the largest survivor set printed word by word.
const showCandidates = 12

// Options configures a REPL.
type Options struct {
	In   io.Reader
	Out  io.Writer
	Dict *words.Dictionary

	Filter   filter.Kind
	Workers  int
	TopK     int
	Metrics  []scorer.Metric // nil = every metric
	Color    bool
	Progress bool
}

// REPL is one interactive solve.
type REPL struct {
	opts    Options
	in      *bufio.Scanner
	out     *syncWriter
	color   colorstring.Colorize
	filter  filter.Filter
	session *game.Session
}

// New prepares a REPL over a fresh assist session.
func New(opts Options) (*REPL, error) {
	if opts.Dict == nil {
		return nil, errors.New("repl: no dictionary")
	}
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if len(opts.Metrics) == 0 {
		opts.Metrics = scorer.Metrics()
	}
	s, err := game.New(game.Options{
		Mode:     game.ModeAssist,
		Length:   opts.Dict.Answers.Length(),
		MaxTurns: -1,
	}, nil)
	if err != nil {
		return nil, err
	}
	return &REPL{
		opts: opts,
		in:   bufio.NewScanner(opts.In),
		out:  &syncWriter{w: opts.Out},
		color: colorstring.Colorize{
			Colors:  colorstring.DefaultColors,
			Disable: !opts.Color,
			Reset:   true,
		},
		filter:  filter.New(opts.Filter),
		session: s,
	}, nil
}

// Session exposes the underlying session.
func (r *REPL) Session() *game.Session { return r.session }

// Run loops until the puzzle is solved, the input ends, or ctx is cancelled.
func (r *REPL) Run(ctx context.Context) error {
	length := r.session.Length
	r.printf("%d-letter words: %d answers, %d allowed guesses.\n", length, r.opts.Dict.Answers.Len(), r.opts.Dict.Allowed.Len())
	r.printf("Enter each guess, then Wordle's reply as %d letters of g/y/b. Commands: rank, list, quit.\n", length)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		guess, ok := r.prompt("guess> ")
		if !ok {
			return nil
		}
		switch guess {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "rank":
			if err := r.rank(ctx); err != nil {
				return err
			}
			continue
		case "list":
			r.list(r.candidates())
			continue
		}
		if err := word.Validate(guess, length); err != nil {
			r.printf("  %s\n", err)
			continue
		}

		resp, ok := r.readReply(guess)
		if !ok {
			return nil
		}
		r.printf("  %s\n", r.tiles(guess, resp))
		if resp.Solved() {
			r.printf("Solved in %d.\n", len(r.session.View().Turns))
			return nil
		}

		cands := r.candidates()
		switch len(cands) {
		case 0:
			r.printf("No answers fit every reply; check the replies entered so far.\n")
			continue
		case 1:
			r.printf("Answer: %s\n", cands[0])
			continue
		}
		r.list(cands)
		if err := r.rank(ctx); err != nil {
			return err
		}
	}
}

// readReply asks for the reply to guess until one is accepted.
func (r *REPL) readReply(guess string) (feedback.Response, bool) {
	for {
		reply, ok := r.prompt("reply> ")
		if !ok {
			return feedback.Response{}, false
		}
		resp, err := r.session.ApplyFeedback(guess, reply)
		if err != nil {
			r.printf("  %s\n", err)
			continue
		}
		log.Debug().Str("guess", guess).Str("reply", resp.String()).Str("constraint", r.session.Constraint().String()).Msg("turn")
		return resp, true
	}
}

func (r *REPL) candidates() []string {
	return r.session.Candidates(r.opts.Dict.Answers.Words(), r.filter)
}

func (r *REPL) list(cands []string) {
	if len(cands) <= showCandidates {
		r.printf("%d candidates: %s\n", len(cands), strings.Join(cands, " "))
		return
	}
	r.printf("%d candidates: %s ...\n", len(cands), strings.Join(cands[:showCandidates], " "))
}

// rank scores the allowed list against the current candidates.
func (r *REPL) rank(ctx context.Context) error {
	active := r.candidates()
	dictionary := r.opts.Dict.Allowed.Words()
	if len(active) == 0 {
		r.printf("Nothing to rank.\n")
		return nil
	}

	opts := []scorer.Option{scorer.WithWorkers(r.opts.Workers), scorer.WithFilter(r.opts.Filter)}
	var bar *progressbar.ProgressBar
	if r.opts.Progress {
		bar = progressbar.NewOptions(len(dictionary),
			progressbar.OptionSetWriter(r.out),
			progressbar.OptionSetDescription(fmt.Sprintf("scoring %d guesses", len(dictionary))),
		)
		opts = append(opts, scorer.WithProgress(func() { _ = bar.Add(1) }))
	}

	sc := scorer.New(r.session.Length, opts...)
	entries, err := sc.Score(ctx, dictionary, active, r.session.Constraint())
	if bar != nil {
		_ = bar.Finish()
		r.printf("\n")
	}
	if err != nil {
		return err
	}

	for _, m := range r.opts.Metrics {
		top := scorer.Rank(entries, m, r.opts.TopK)
		parts := make([]string, 0, len(top))
		for _, e := range top {
			if m == scorer.MetricInformation {
				parts = append(parts, fmt.Sprintf("%s(%.2f)", e.Word, m.Value(e.Record)))
			} else {
				parts = append(parts, fmt.Sprintf("%s(%.0f)", e.Word, m.Value(e.Record)))
			}
		}
		r.printf("  %-12s %s\n", m, strings.Join(parts, " "))
	}
	return nil
}

// tiles renders a turn as colored letter blocks.
func (r *REPL) tiles(guess string, resp feedback.Response) string {
	var b strings.Builder
	for i := 0; i < resp.Len(); i++ {
		bg := "_dark_gray_"
		switch resp.At(i) {
		case feedback.Green:
			bg = "_green_"
		case feedback.Yellow:
			bg = "_yellow_"
		}
		fmt.Fprintf(&b, "[%s][black] %c [reset]", bg, guess[i]-'a'+'A')
	}
	return r.color.Color(b.String())
}

func (r *REPL) prompt(p string) (string, bool) {
	r.printf("%s", p)
	if !r.in.Scan() {
		r.printf("\n")
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(r.in.Text())), true
}

func (r *REPL) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// syncWriter serializes writes from the loop and the progress bar.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
