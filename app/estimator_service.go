package app

import (
	"context"
	"fmt"

	"gofold/domain/core"
	"gofold/domain/estimate"
	"gofold/internal"
	"gofold/internal/aggregate"
	"gofold/internal/driver"
	"gofold/internal/permutation"
	"gofold/ports"
)

// RunRequest describes one estimation run
type RunRequest struct {
	Model       ports.Model
	K           int
	Repetitions int
	BaseSeed    int64
	Confidence  float64 // two-sided level in (0,1)
	MaxWorkers  int
	Stratify    bool
}

// RunOutcome bundles the run manifest with the estimate report
type RunOutcome struct {
	RunID       core.RunID
	Fingerprint core.Fingerprint
	Report      *estimate.Report
	Samples     estimate.SampleCollection
}

// ComparisonOutcome pairs two estimation runs with a permutation test
// over their fold accuracies
type ComparisonOutcome struct {
	Candidate *RunOutcome
	Baseline  *RunOutcome
	Test      *permutation.Result
}

// EstimatorService orchestrates one full estimation pass: read the
// dataset, drive the repeated k-fold evaluation, aggregate, and hand
// the report to the ledger when one is configured.
type EstimatorService struct {
	reader ports.DatasetReader
	driver *driver.Driver
	tester *permutation.Tester
	ledger ports.ReportLedger // nil disables persistence
	logger *internal.Logger
}

// NewEstimatorService wires the service. ledger may be nil.
func NewEstimatorService(reader ports.DatasetReader, rng ports.RNG, ledger ports.ReportLedger) *EstimatorService {
	return &EstimatorService{
		reader: reader,
		driver: driver.New(rng),
		tester: permutation.NewTester(rng),
		ledger: ledger,
		logger: internal.DefaultLogger,
	}
}

// Run executes the request and returns the outcome. Any fold failure
// fails the whole run; callers see which (repetition, fold) failed and
// why via the returned error.
func (s *EstimatorService) Run(ctx context.Context, req RunRequest) (*RunOutcome, error) {
	if req.Model == nil {
		return nil, core.NewInvalidParameterError("model", "cannot be nil")
	}

	ds, err := s.reader.ReadDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	runID := core.NewRunID()
	fingerprint := ds.Fingerprint()
	s.logger.Info("run %s: %d records, model=%s, k=%d, repetitions=%d, seed=%d, fingerprint=%.12s",
		runID, ds.Len(), req.Model.Name(), req.K, req.Repetitions, req.BaseSeed, fingerprint)

	samples, err := s.driver.Run(ctx, ds, req.Model, driver.Config{
		K:           req.K,
		Repetitions: req.Repetitions,
		BaseSeed:    req.BaseSeed,
		MaxWorkers:  req.MaxWorkers,
		Stratify:    req.Stratify,
	})
	if err != nil {
		return nil, err
	}

	report, err := aggregate.SummarizeLevel(samples, req.Confidence)
	if err != nil {
		return nil, err
	}
	report.RunID = runID

	if s.ledger != nil {
		if err := s.ledger.SaveReport(ctx, report); err != nil {
			return nil, fmt.Errorf("persisting report %s: %w", runID, err)
		}
		s.logger.Debug("run %s: report persisted", runID)
	}

	s.logger.Info("run %s: mean=%.4f sd=%.4f interval=[%.4f, %.4f] n=%d",
		runID, report.Mean, report.StdDev, report.Lower, report.Upper, report.N)

	return &RunOutcome{
		RunID:       runID,
		Fingerprint: fingerprint,
		Report:      report,
		Samples:     samples,
	}, nil
}

// Compare runs the request once for the candidate model and once for
// the baseline on the same dataset, seeds, and folds, then permutation
// tests the difference between the two fold-accuracy collections.
func (s *EstimatorService) Compare(ctx context.Context, req RunRequest, baseline ports.Model) (*ComparisonOutcome, error) {
	if baseline == nil {
		return nil, core.NewInvalidParameterError("baseline", "cannot be nil")
	}

	candidate, err := s.Run(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("candidate run: %w", err)
	}

	baseReq := req
	baseReq.Model = baseline
	base, err := s.Run(ctx, baseReq)
	if err != nil {
		return nil, fmt.Errorf("baseline run: %w", err)
	}

	result, err := s.tester.Test(ctx, candidate.Samples.Accuracies(), base.Samples.Accuracies(), req.BaseSeed)
	if err != nil {
		return nil, fmt.Errorf("permutation test: %w", err)
	}

	s.logger.Info("compare %s vs %s: diff=%.4f p=%.4f (%d shuffles)",
		req.Model.Name(), baseline.Name(), result.ObservedDiff, result.PValue, result.Shuffles)

	return &ComparisonOutcome{
		Candidate: candidate,
		Baseline:  base,
		Test:      result,
	}, nil
}
