package fold

import (
	"context"
	"fmt"

	"gofold/domain/core"
	"gofold/domain/dataset"
	"gofold/ports"
)

// Evaluator fits a fresh model on a training subset and scores it on
// the held-out complement. The fitted instance is discarded after
// scoring; nothing carries over between folds.
type Evaluator struct {
	model ports.Model
}

// NewEvaluator creates an evaluator for one model family
func NewEvaluator(model ports.Model) *Evaluator {
	return &Evaluator{model: model}
}

// Evaluate returns the exact-match accuracy in [0,1] over the held-out
// indices. Model fit failures propagate to the caller, which decides
// whether to abort the repetition; nothing is skipped silently.
func (e *Evaluator) Evaluate(ctx context.Context, ds *dataset.Dataset, trainIdx, testIdx []int) (float64, error) {
	if len(trainIdx) == 0 {
		return 0, core.NewInvalidParameterError("train_indices", "cannot be empty")
	}
	if len(testIdx) == 0 {
		return 0, core.NewInvalidParameterError("test_indices", "cannot be empty")
	}

	train, err := ds.Subset(trainIdx)
	if err != nil {
		return 0, err
	}
	test, err := ds.Subset(testIdx)
	if err != nil {
		return 0, err
	}

	fitted, err := e.model.Fit(ctx, train)
	if err != nil {
		return 0, fmt.Errorf("fitting %s on %d training records: %w", e.model.Name(), train.Len(), err)
	}

	records := make([]dataset.Record, test.Len())
	for i := 0; i < test.Len(); i++ {
		records[i] = test.At(i)
	}
	predicted, err := fitted.Predict(records)
	if err != nil {
		return 0, fmt.Errorf("scoring %s on %d held-out records: %w", e.model.Name(), test.Len(), err)
	}
	if len(predicted) != test.Len() {
		return 0, fmt.Errorf("%w: %s returned %d predictions for %d records",
			core.ErrModelFit, e.model.Name(), len(predicted), test.Len())
	}

	matches := 0
	for i, label := range predicted {
		if label == test.At(i).Label {
			matches++
		}
	}
	return float64(matches) / float64(test.Len()), nil
}
