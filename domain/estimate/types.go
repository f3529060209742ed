package estimate

import (
	"gofold/domain/core"
)

// IntervalMethod names how a report's interval bounds were computed
type IntervalMethod string

const (
	// MethodNormal is the normal-approximation interval mean ± z·stddev.
	// The accuracy distribution is bounded in [0,1] and can be skewed for
	// small n; callers needing exact coverage should use MethodPercentile.
	MethodNormal IntervalMethod = "normal_approximation"

	// MethodPercentile bounds the interval by empirical percentiles of
	// the raw accuracy samples.
	MethodPercentile IntervalMethod = "percentile"
)

// FoldScore is the accuracy of one (train-subset, test-subset) pair.
// Immutable once produced by the fold evaluator.
type FoldScore struct {
	Repetition int     `json:"repetition"`
	Fold       int     `json:"fold"`
	Accuracy   float64 `json:"accuracy"`
}

// SampleCollection holds all fold scores of a run in
// (repetition, fold-index) order. Length is k × repetitions. The order
// carries no statistical meaning beyond exchangeability.
type SampleCollection []FoldScore

// Accuracies extracts the raw accuracy values in collection order
func (sc SampleCollection) Accuracies() []float64 {
	out := make([]float64, len(sc))
	for i, s := range sc {
		out[i] = s.Accuracy
	}
	return out
}

// Report is the final aggregated output: point estimate, spread, and
// interval bounds. Immutable once produced; identical runs produce
// byte-identical reports.
type Report struct {
	RunID         core.RunID     `json:"run_id,omitempty"`
	Mean          float64        `json:"mean"`
	StdDev        float64        `json:"std_dev"`
	StandardError float64        `json:"standard_error"`
	Lower         float64        `json:"lower"`
	Upper         float64        `json:"upper"`
	Z             float64        `json:"z,omitempty"` // confidence multiplier; zero for percentile intervals
	N             int            `json:"n"`
	Method        IntervalMethod `json:"method"`
	Samples       []float64      `json:"samples"`
}
