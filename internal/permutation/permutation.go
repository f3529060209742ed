package permutation

import (
	"context"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"gofold/domain/core"
	"gofold/ports"
)

const (
	defaultShuffles   = 1000
	minShuffles       = 100
	maxShuffles       = 100000
	defaultMaxWorkers = 4
)

// Tester runs a two-group label permutation test: group labels are
// reassigned without replacement across the pooled observations, and
// the observed mean difference is ranked against the null distribution
// of permuted differences. This resamples labels, not records — it is
// a different procedure from k-fold partitioning and the two must not
// be conflated.
type Tester struct {
	rng        ports.RNG
	shuffles   int
	maxWorkers int
}

// NewTester creates a permutation tester with default settings
func NewTester(rng ports.RNG) *Tester {
	return &Tester{
		rng:        rng,
		shuffles:   defaultShuffles,
		maxWorkers: defaultMaxWorkers,
	}
}

// SetShuffles configures the number of permutations, clamped to
// [100, 100000] for statistical reliability vs. runtime.
func (t *Tester) SetShuffles(n int) {
	if n < minShuffles {
		n = minShuffles
	}
	if n > maxShuffles {
		n = maxShuffles
	}
	t.shuffles = n
}

// SetMaxWorkers bounds concurrent shuffle evaluation
func (t *Tester) SetMaxWorkers(n int) {
	if n < 1 {
		n = 1
	}
	t.maxWorkers = n
}

// NullSummary describes the permuted null distribution
type NullSummary struct {
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Percentile95 float64 `json:"percentile_95"`
}

// Result is the outcome of one permutation test
type Result struct {
	PValue       float64     `json:"p_value"`
	ObservedDiff float64     `json:"observed_diff"`
	Shuffles     int         `json:"shuffles"`
	Null         NullSummary `json:"null"`
}

// Test computes a two-sided permutation p-value for the difference in
// group means. Every shuffle draws its own deterministic sub-seed from
// baseSeed, so results are identical for identical inputs regardless
// of worker count, and no RNG state is shared between workers.
func (t *Tester) Test(ctx context.Context, x, y []float64, baseSeed int64) (*Result, error) {
	if len(x) < 2 || len(y) < 2 {
		return nil, core.NewInsufficientDataError(len(x)+len(y), 4)
	}

	meanX, _ := stats.Mean(x)
	meanY, _ := stats.Mean(y)
	observed := meanX - meanY

	pooled := make([]float64, 0, len(x)+len(y))
	pooled = append(pooled, x...)
	pooled = append(pooled, y...)
	nX := len(x)

	null := make([]float64, t.shuffles)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.maxWorkers)

	for i := 0; i < t.shuffles; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stream, err := t.rng.SeededStream(gctx, "permutation-shuffle",
				t.rng.DeriveSeed("permutation", i, baseSeed))
			if err != nil {
				return fmt.Errorf("deriving shuffle stream %d: %w", i, err)
			}

			shuffled := make([]float64, len(pooled))
			copy(shuffled, pooled)
			stream.Shuffle(len(shuffled), func(a, b int) {
				shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
			})

			permX, _ := stats.Mean(shuffled[:nX])
			permY, _ := stats.Mean(shuffled[nX:])
			null[i] = permX - permY
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	extreme := 0
	for _, diff := range null {
		if math.Abs(diff) >= math.Abs(observed) {
			extreme++
		}
	}
	// Add-one correction keeps p strictly positive for finite shuffles
	pValue := float64(1+extreme) / float64(1+t.shuffles)

	mean, _ := stats.Mean(null)
	stdDev, _ := stats.StandardDeviationSample(null)
	min, _ := stats.Min(null)
	max, _ := stats.Max(null)
	p95, _ := stats.Percentile(null, 95)

	return &Result{
		PValue:       pValue,
		ObservedDiff: observed,
		Shuffles:     t.shuffles,
		Null: NullSummary{
			Mean:         mean,
			StdDev:       stdDev,
			Min:          min,
			Max:          max,
			Percentile95: p95,
		},
	}, nil
}
