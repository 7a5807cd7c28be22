package scorer

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/robalobadob/wordle/apps/solver/internal/constraint"
	"github.com/robalobadob/wordle/apps/solver/internal/feedback"
	"github.com/robalobadob/wordle/apps/solver/internal/filter"
	"github.com/robalobadob/wordle/apps/solver/internal/word"
)

func mustScore(t *testing.T, s *Scorer, dict, active []string, base constraint.Constraint) []Entry {
	t.Helper()
	got, err := s.Score(context.Background(), dict, active, base)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	return got
}

func TestScore_SingleCandidate(t *testing.T) {
	got := mustScore(t, New(3), []string{"abc", "def"}, []string{"abc"}, constraint.Identity())
	if len(got) != 2 {
		t.Fatalf("entries = %d", len(got))
	}

	abc := got[0]
	if abc.Word != "abc" || abc.Index != 0 {
		t.Fatalf("entry 0 = %+v", abc)
	}
	if abc.Record.Green != 3 || abc.Record.Rejected != 0 || abc.Record.Included != 3 || abc.Record.Excluded != 0 {
		t.Errorf("abc record = %+v", abc.Record)
	}

	// the only target always survives its own feedback, so nothing is rejected
	def := got[1]
	if def.Record.Green != 0 || def.Record.Rejected != 0 || def.Record.Excluded != 3 || def.Record.Included != 0 {
		t.Errorf("def record = %+v", def.Record)
	}
	if def.Record.BitsBefore != 0 || def.Record.Information() != 0 {
		t.Errorf("one candidate carries no information: %+v", def.Record)
	}
}

func TestScore_SmallSet(t *testing.T) {
	words := []string{"abc", "abd", "xyz"}
	got := mustScore(t, New(3, WithWorkers(2)), words, words, constraint.Identity())

	want := map[string][2]int{ // green, rejected
		"abc": {5, 6},
		"abd": {5, 6},
		"xyz": {3, 4},
	}
	for _, e := range got {
		w := want[e.Word]
		if e.Record.Green != w[0] || e.Record.Rejected != w[1] || e.Record.Targets != 3 {
			t.Errorf("%s: %+v, want green %d rejected %d", e.Word, e.Record, w[0], w[1])
		}
	}

	if got[0].Record.Information() != math.Log2(3) {
		t.Errorf("abc information = %v", got[0].Record.Information())
	}
	wantXYZ := math.Log2(3) - 2.0/3.0
	if d := got[2].Record.Information() - wantXYZ; math.Abs(d) > 1e-12 {
		t.Errorf("xyz information = %v, want %v", got[2].Record.Information(), wantXYZ)
	}

	ranked := Rank(got, MetricRejected, 2)
	if len(ranked) != 2 || ranked[0].Word != "abc" || ranked[1].Word != "abd" {
		t.Errorf("Rank(rejected, 2) = %v", ranked)
	}
	ranked = Rank(got, MetricInformation, 0)
	if ranked[2].Word != "xyz" {
		t.Errorf("Rank(information) = %v", ranked)
	}
}

func TestScore_WithBase(t *testing.T) {
	r, _ := feedback.Parse("gbb", 3)
	base, err := constraint.Merge(constraint.Identity(), r, "axy")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	dict := []string{"abc", "abd", "azz"}
	active := filter.Scalar{}.Filter(dict, base)
	got := mustScore(t, New(3), dict, active, base)
	for _, e := range got {
		// every hypothetical keeps the base exclusions
		if e.Record.Excluded < 2*e.Record.Targets {
			t.Errorf("%s: base exclusions lost: %+v", e.Word, e.Record)
		}
	}
}

func TestScore_Empty(t *testing.T) {
	s := New(5)
	for _, c := range []struct{ dict, active []string }{
		{nil, []string{"crane"}},
		{[]string{"crane"}, nil},
		{nil, nil},
	} {
		got, err := s.Score(context.Background(), c.dict, c.active, constraint.Identity())
		if err != nil || got == nil || len(got) != 0 {
			t.Errorf("Score(%v, %v) = %v, %v", c.dict, c.active, got, err)
		}
	}
}

func TestScore_RejectsWrongLength(t *testing.T) {
	s := New(5)
	_, err := s.Score(context.Background(), []string{"crane", "cran"}, []string{"crane"}, constraint.Identity())
	var ee *word.EncodingError
	if !errors.As(err, &ee) || ee.Word != "cran" {
		t.Fatalf("want encoding error for cran, got %v", err)
	}
	if _, err := s.Score(context.Background(), []string{"crane"}, []string{"CRANE"}, constraint.Identity()); !errors.Is(err, word.ErrEncoding) {
		t.Fatalf("active not validated: %v", err)
	}
}

func TestScore_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(3).Score(ctx, []string{"abc"}, []string{"abc"}, constraint.Identity())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestScore_CancelledMidPass(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var done atomic.Int32
	s := New(3, WithWorkers(1), WithProgress(func() {
		done.Add(1)
		cancel()
	}))
	dict := []string{"abc", "abd", "xyz", "zyx", "cab"}
	_, err := s.Score(ctx, dict, dict, constraint.Identity())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if n := done.Load(); n >= int32(len(dict)) {
		t.Fatalf("pass ran to completion (%d guesses)", n)
	}
}

func TestScore_Progress(t *testing.T) {
	var n atomic.Int32
	dict := []string{"abc", "abd", "xyz", "zyx"}
	mustScore(t, New(3, WithProgress(func() { n.Add(1) })), dict, dict[:2], constraint.Identity())
	if int(n.Load()) != len(dict) {
		t.Fatalf("progress calls = %d", n.Load())
	}
}

func TestScore_FiltersAgree(t *testing.T) {
	words := []string{"crane", "crate", "trace", "react", "cater", "slate", "cigar", "rebut", "sissy", "humph", "awake", "blush", "geese", "those"}
	lanes := mustScore(t, New(5, WithFilter(filter.KindLanes), WithWorkers(3)), words, words, constraint.Identity())
	scalar := mustScore(t, New(5, WithFilter(filter.KindScalar), WithWorkers(1)), words, words, constraint.Identity())
	if !reflect.DeepEqual(lanes, scalar) {
		t.Fatal("lane and scalar passes differ")
	}
}

func TestRank_TiesKeepDictionaryOrder(t *testing.T) {
	entries := []Entry{
		{Word: "d", Index: 3, Record: Record{Green: 1}},
		{Word: "c", Index: 2, Record: Record{Green: 2}},
		{Word: "b", Index: 1, Record: Record{Green: 1}},
		{Word: "a", Index: 0, Record: Record{Green: 2}},
	}
	got := Rank(entries, MetricGreen, 0)
	var order []string
	for _, e := range got {
		order = append(order, e.Word)
	}
	if !reflect.DeepEqual(order, []string{"a", "c", "b", "d"}) {
		t.Fatalf("order = %v", order)
	}
	if entries[0].Word != "d" {
		t.Fatal("Rank modified its input")
	}
	if got := Rank(nil, MetricGreen, 3); got == nil || len(got) != 0 {
		t.Fatalf("Rank(nil) = %#v", got)
	}
}

func TestParseMetric(t *testing.T) {
	for _, m := range Metrics() {
		got, err := ParseMetric(string(m))
		if err != nil || got != m {
			t.Errorf("ParseMetric(%q) = %q, %v", m, got, err)
		}
	}
	if got, _ := ParseMetric(" Bits "); got != MetricInformation {
		t.Errorf("bits alias = %q", got)
	}
	if _, err := ParseMetric("entropy2"); err == nil {
		t.Error("unknown metric accepted")
	}
	r := Record{Green: 4, Rejected: 7}
	if MetricGreen.Value(r) != 4 || MetricRejected.Value(r) != 7 {
		t.Error("Value mismatch")
	}
}
