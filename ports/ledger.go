package ports

import (
	"context"

	"gofold/domain/core"
	"gofold/domain/estimate"
)

// ReportLedger persists estimate reports keyed by run ID. This is an
// external consumer of the estimator's output, not part of the core
// pipeline; the driver and aggregator never touch it.
type ReportLedger interface {
	SaveReport(ctx context.Context, report *estimate.Report) error
	GetReport(ctx context.Context, runID core.RunID) (*estimate.Report, error)
	ListReports(ctx context.Context, limit int) ([]estimate.Report, error)
}
