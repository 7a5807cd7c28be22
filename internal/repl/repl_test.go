package repl

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/robalobadob/wordle/apps/solver/internal/filter"
	"github.com/robalobadob/wordle/apps/solver/internal/scorer"
	"github.com/robalobadob/wordle/apps/solver/internal/words"
)

func testDict(t *testing.T) *words.Dictionary {
	t.Helper()
	answers, err := words.New([]string{"crane", "slate", "humph", "those", "horse", "arose", "abbey", "pound", "dowdy", "music"}, 5)
	if err != nil {
		t.Fatal(err)
	}
	extra, err := words.New([]string{"adieu", "roate"}, 5)
	if err != nil {
		t.Fatal(err)
	}
	return &words.Dictionary{Answers: answers, Allowed: answers.Union(extra)}
}

func run(t *testing.T, ctx context.Context, input string, opts Options) (string, *REPL, error) {
	t.Helper()
	var out bytes.Buffer
	opts.In = strings.NewReader(input)
	opts.Out = &out
	opts.Dict = testDict(t)
	r, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = r.Run(ctx)
	return out.String(), r, err
}

func TestRun_Solve(t *testing.T) {
	input := strings.Join([]string{
		"cran", // too short
		"crane",
		"bbxbb", // bad reply, asked again
		"bbbbb",
		"humph",
		"ggggg",
	}, "\n") + "\n"
	out, r, err := run(t, context.Background(), input, Options{Filter: filter.KindLanes, TopK: 2, Metrics: []scorer.Metric{scorer.MetricRejected}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, want := range []string{
		`invalid word "cran"`,
		"must use only g, y or b",
		"2 candidates: humph dowdy",
		"rejected",
		" H  U  M  P  H ",
		"Solved in 2.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("colors written with Color off")
	}
	if v := r.Session().View(); len(v.Turns) != 2 || v.Turns[0].Reply != "bbbbb" {
		t.Errorf("turns = %+v", v.Turns)
	}
}

func TestRun_RankCommand(t *testing.T) {
	out, _, err := run(t, context.Background(), "rank\nlist\nquit\n", Options{
		Filter:   filter.KindScalar,
		TopK:     3,
		Metrics:  []scorer.Metric{scorer.MetricGreen, scorer.MetricInformation},
		Progress: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out, "green") || !strings.Contains(out, "information") {
		t.Errorf("ranking missing:\n%s", out)
	}
	if !strings.Contains(out, "10 candidates:") {
		t.Errorf("list missing:\n%s", out)
	}
}

func TestRun_NoCandidates(t *testing.T) {
	out, r, err := run(t, context.Background(), "crane\nggggb\n", Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out, "No answers fit") {
		t.Errorf("output:\n%s", out)
	}
	if len(r.Session().View().Turns) != 1 {
		t.Error("turn not recorded")
	}
}

func TestRun_EOF(t *testing.T) {
	if _, _, err := run(t, context.Background(), "", Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, _, err := run(t, context.Background(), "crane\n", Options{}); err != nil {
		t.Fatalf("Run mid-turn: %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := run(t, ctx, "crane\n", Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestTiles_Color(t *testing.T) {
	out, _, err := run(t, context.Background(), "crane\nggggg\n", Options{Color: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "\033[") {
		t.Errorf("no escape codes:\n%s", out)
	}
}

func TestNew_NoDictionary(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("accepted nil dictionary")
	}
}
