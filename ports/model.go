package ports

import (
	"context"

	"gofold/domain/dataset"
)

// Fitted is a trained model instance. It is created fresh for each
// fold and discarded after scoring; no state carries between folds.
type Fitted interface {
	// Predict returns one label per record, in record order
	Predict(records []dataset.Record) ([]dataset.Label, error)
}

// Model is the capability contract the fold evaluator needs from a
// classifier family. Implementations must return core.ErrModelFit
// (wrapped) when the training subset cannot be fit, e.g. a degenerate
// class distribution the family cannot handle.
type Model interface {
	// Name identifies the model family in reports and errors
	Name() string

	// Fit trains a fresh instance on the training subset only
	Fit(ctx context.Context, train *dataset.Dataset) (Fitted, error)
}
