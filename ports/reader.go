package ports

import (
	"context"

	"gofold/domain/dataset"
)

// DatasetReader supplies an in-memory dataset from an external source.
// How the source was loaded (spreadsheet, CSV, synthetic) is opaque to
// the estimator core, which only needs read-only indexed access.
type DatasetReader interface {
	ReadDataset(ctx context.Context) (*dataset.Dataset, error)
}
