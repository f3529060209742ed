package model

import (
	"context"

	"gofold/domain/core"
	"gofold/domain/dataset"
	"gofold/ports"
)

// Majority is a baseline classifier that always predicts the most
// frequent training label. It fits any non-empty training subset,
// including degenerate single-class ones.
type Majority struct{}

// NewMajority creates a majority-class baseline
func NewMajority() *Majority {
	return &Majority{}
}

// Name identifies the model family
func (m *Majority) Name() string { return "majority_class" }

// Fit picks the most frequent training label. Ties break toward the
// lexicographically smallest label so fitting stays deterministic.
func (m *Majority) Fit(ctx context.Context, train *dataset.Dataset) (ports.Fitted, error) {
	if train == nil || train.Len() == 0 {
		return nil, core.NewModelFitError(m.Name(), "empty training subset")
	}

	counts := train.ClassCounts()
	var best dataset.Label
	bestCount := -1
	for label, count := range counts {
		if count > bestCount || (count == bestCount && label < best) {
			best = label
			bestCount = count
		}
	}
	return &fittedMajority{label: best}, nil
}

type fittedMajority struct {
	label dataset.Label
}

func (f *fittedMajority) Predict(records []dataset.Record) ([]dataset.Label, error) {
	labels := make([]dataset.Label, len(records))
	for i := range records {
		labels[i] = f.label
	}
	return labels, nil
}
