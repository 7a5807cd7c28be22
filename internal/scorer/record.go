package scorer

import (
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Record aggregates one guess over every target of the active set.
type Record struct {
	Green    int `json:"green"`    // Green tags summed over targets
	Included int `json:"included"` // |included| of each hypothetical constraint, summed
	Excluded int `json:"excluded"` // |excluded| of each hypothetical constraint, summed
	Rejected int `json:"rejected"` // active words ruled out, summed
	Targets  int `json:"targets"`

	BitsBefore float64 `json:"bitsBefore"` // log2 |active|
	BitsAfter  float64 `json:"bitsAfter"`  // Σ log2 |reduced|; an empty reduction counts as 0 bits
}

// ExpectedBitsAfter is the mean information still required after the guess.
func (r Record) ExpectedBitsAfter() float64 {
	if r.Targets == 0 {
		return 0
	}
	return r.BitsAfter / float64(r.Targets)
}

// Information is the expected number of bits the guess removes.
func (r Record) Information() float64 { return r.BitsBefore - r.ExpectedBitsAfter() }

// Entry is one scored dictionary word. Index is its position in the dictionary.
type Entry struct {
	Word   string `json:"word"`
	Index  int    `json:"index"`
	Record Record `json:"record"`
}

// Metric selects the ranking key.
type Metric string

const (
	MetricGreen       Metric = "green"
	MetricIncluded    Metric = "included"
	MetricExcluded    Metric = "excluded"
	MetricRejected    Metric = "rejected"
	MetricInformation Metric = "information"
)

// Metrics lists every metric in display order.
func Metrics() []Metric {
	return []Metric{MetricGreen, MetricIncluded, MetricExcluded, MetricRejected, MetricInformation}
}

// ParseMetric accepts a metric name; "bits" and "info" alias information.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case MetricGreen, MetricIncluded, MetricExcluded, MetricRejected, MetricInformation:
		return m, nil
	case "bits", "info":
		return MetricInformation, nil
	default:
		return "", fmt.Errorf("unknown metric %q", s)
	}
}

// Value is the ranking key of r under m.
func (m Metric) Value(r Record) float64 {
	if m == MetricInformation {
		return r.Information()
	}
	return float64(m.count(r))
}

func (m Metric) count(r Record) int {
	switch m {
	case MetricIncluded:
		return r.Included
	case MetricExcluded:
		return r.Excluded
	case MetricRejected:
		return r.Rejected
	default:
		return r.Green
	}
}

// Rank returns the top k entries by m, highest first. Equal values keep
// dictionary order. k <= 0 returns every entry. entries is not modified.
func Rank(entries []Entry, m Metric, k int) []Entry {
	if m == MetricInformation {
		return topK(entries, k, Record.Information)
	}
	return topK(entries, k, m.count)
}

func topK[T constraints.Ordered](entries []Entry, k int, key func(Record) T) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	slices.SortStableFunc(out, func(a, b Entry) int {
		ka, kb := key(a.Record), key(b.Record)
		switch {
		case ka > kb:
			return -1
		case ka < kb:
			return 1
		}
		return a.Index - b.Index
	})
	if k > 0 && k < len(out) {
		out = out[:k:k]
	}
	return out
}
