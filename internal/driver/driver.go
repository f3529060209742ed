package driver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"gofold/domain/core"
	"gofold/domain/dataset"
	"gofold/domain/estimate"
	"gofold/internal"
	"gofold/internal/fold"
	"gofold/internal/partition"
	"gofold/ports"
)

const defaultMaxWorkers = 4

// Config holds the parameters of one repeated cross-validation run
type Config struct {
	K           int   // folds per repetition
	Repetitions int   // independent k-fold passes
	BaseSeed    int64 // root of the per-repetition seed arena
	MaxWorkers  int   // concurrent fold evaluations; defaults to 4
	Stratify    bool  // preserve class proportions within folds
}

// FoldFailure identifies one failed fold evaluation
type FoldFailure struct {
	Repetition int
	Fold       int
	Err        error
}

func (f FoldFailure) String() string {
	return fmt.Sprintf("repetition %d fold %d: %v", f.Repetition, f.Fold, f.Err)
}

// RunError aggregates every fold that failed during a run. A run never
// returns partial results: dropping failed folds and averaging over
// what worked would silently bias the estimate.
type RunError struct {
	Failures []FoldFailure
}

func (e *RunError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.String()
	}
	return fmt.Sprintf("run failed: %d fold evaluation(s) failed: %s",
		len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes the underlying fold errors to errors.Is/As
func (e *RunError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// Driver invokes the partitioner once per repetition and the fold
// evaluator once per resulting fold, k × repetitions times in total,
// with independent deterministic randomization per repetition.
type Driver struct {
	rng    ports.RNG
	logger *internal.Logger
}

// New creates a repetition driver
func New(rng ports.RNG) *Driver {
	return &Driver{rng: rng, logger: internal.DefaultLogger}
}

// Run produces the full sample collection of a repeated k-fold run in
// (repetition, fold-index) order. Fold evaluations execute concurrently
// under a bounded worker pool; each repetition's partition derives from
// its own sub-seed, so results are byte-identical for identical inputs
// regardless of worker interleaving. If any fold fails, the first
// failure cancels outstanding work and Run reports every fold that did
// fail.
func (d *Driver) Run(ctx context.Context, ds *dataset.Dataset, model ports.Model, cfg Config) (estimate.SampleCollection, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, core.NewInvalidParameterError("dataset", "cannot be empty")
	}
	if model == nil {
		return nil, core.NewInvalidParameterError("model", "cannot be nil")
	}
	if cfg.Repetitions < 1 {
		return nil, core.NewInvalidParameterError("repetitions", "must be at least 1, got "+strconv.Itoa(cfg.Repetitions))
	}
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = defaultMaxWorkers
	}

	partitioner := partition.New(cfg.Stratify)
	evaluator := fold.NewEvaluator(model)

	// Partition every repetition up front; the seed arena makes each
	// repetition independent of the others and of scheduling order.
	allFolds := make([][][]int, cfg.Repetitions)
	for r := 0; r < cfg.Repetitions; r++ {
		seed := d.rng.DeriveSeed("repetition", r, cfg.BaseSeed)
		folds, err := partitioner.Partition(ds, cfg.K, seed)
		if err != nil {
			return nil, err
		}
		allFolds[r] = folds
	}

	d.logger.Debug("driver: %d repetitions x %d folds on %d records (%d workers)",
		cfg.Repetitions, cfg.K, ds.Len(), workers)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	scores := make([]estimate.FoldScore, cfg.Repetitions*cfg.K)
	sem := semaphore.NewWeighted(int64(workers))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []FoldFailure
	)

	for r := 0; r < cfg.Repetitions; r++ {
		for f := 0; f < cfg.K; f++ {
			wg.Add(1)
			go func(r, f int) {
				defer wg.Done()

				if err := sem.Acquire(runCtx, 1); err != nil {
					return // canceled before starting; not a fold failure
				}
				defer sem.Release(1)

				testIdx := allFolds[r][f]
				trainIdx := partition.TrainIndices(allFolds[r], f)

				acc, err := evaluator.Evaluate(runCtx, ds, trainIdx, testIdx)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return
					}
					mu.Lock()
					failures = append(failures, FoldFailure{Repetition: r, Fold: f, Err: err})
					mu.Unlock()
					cancel() // abandon remaining evaluations
					return
				}
				scores[r*cfg.K+f] = estimate.FoldScore{Repetition: r, Fold: f, Accuracy: acc}
			}(r, f)
		}
	}
	wg.Wait()

	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool {
			if failures[i].Repetition != failures[j].Repetition {
				return failures[i].Repetition < failures[j].Repetition
			}
			return failures[i].Fold < failures[j].Fold
		})
		for _, f := range failures {
			d.logger.Error("driver: %s", f.String())
		}
		return nil, &RunError{Failures: failures}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return estimate.SampleCollection(scores), nil
}
