package driver

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"gofold/adapters/model"
	"gofold/adapters/rng"
	"gofold/domain/core"
	"gofold/domain/dataset"
	"gofold/internal/aggregate"
	"gofold/internal/testkit"
	"gofold/ports"
)

func TestRun_ScenarioBalancedMajority(t *testing.T) {
	// 100 records, 2 balanced classes, k=5, 1 repetition, majority
	// model: stratified folds hold 10 of each class, so every fold
	// scores exactly 0.5.
	ds := testkit.New(1).BalancedBinary(100)
	d := New(rng.New())

	samples, err := d.Run(context.Background(), ds, model.NewMajority(), Config{
		K:           5,
		Repetitions: 1,
		BaseSeed:    42,
		Stratify:    true,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(samples) != 5 {
		t.Fatalf("expected 5 fold scores, got %d", len(samples))
	}
	for _, s := range samples {
		if s.Accuracy != 0.5 {
			t.Errorf("repetition %d fold %d accuracy = %v, want 0.5", s.Repetition, s.Fold, s.Accuracy)
		}
	}
}

func TestRun_OrderingAndLength(t *testing.T) {
	ds := testkit.New(2).BalancedBinary(40)
	d := New(rng.New())

	samples, err := d.Run(context.Background(), ds, model.NewMajority(), Config{
		K:           4,
		Repetitions: 3,
		BaseSeed:    7,
		Stratify:    true,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(samples) != 12 {
		t.Fatalf("expected 12 fold scores, got %d", len(samples))
	}
	for i, s := range samples {
		if s.Repetition != i/4 || s.Fold != i%4 {
			t.Fatalf("sample %d is (r=%d, f=%d), want (%d, %d)", i, s.Repetition, s.Fold, i/4, i%4)
		}
	}
}

func TestRun_DeterministicAcrossWorkerCounts(t *testing.T) {
	ds := testkit.New(3).Noisy(80, 0.25)

	var collected [][]float64
	for _, workers := range []int{1, 8} {
		d := New(rng.New())
		samples, err := d.Run(context.Background(), ds, model.NewTree(), Config{
			K:           5,
			Repetitions: 4,
			BaseSeed:    123,
			MaxWorkers:  workers,
			Stratify:    true,
		})
		if err != nil {
			t.Fatalf("Run with %d workers failed: %v", workers, err)
		}
		collected = append(collected, samples.Accuracies())
	}

	if !reflect.DeepEqual(collected[0], collected[1]) {
		t.Error("results must be byte-identical regardless of worker count")
	}
}

func TestRun_InvalidParameters(t *testing.T) {
	ds := testkit.New(4).BalancedBinary(20)
	d := New(rng.New())
	ctx := context.Background()

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "k too small", cfg: Config{K: 1, Repetitions: 1}},
		{name: "k exceeds n", cfg: Config{K: 21, Repetitions: 1}},
		{name: "zero repetitions", cfg: Config{K: 5, Repetitions: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Run(ctx, ds, model.NewMajority(), tt.cfg)
			if !core.IsInvalidParameterError(err) {
				t.Errorf("expected invalid parameter error, got %v", err)
			}
		})
	}

	if _, err := d.Run(ctx, ds, nil, Config{K: 5, Repetitions: 1}); !core.IsInvalidParameterError(err) {
		t.Errorf("nil model should fail with invalid parameter, got %v", err)
	}
	if _, err := d.Run(ctx, nil, model.NewMajority(), Config{K: 5, Repetitions: 1}); !core.IsInvalidParameterError(err) {
		t.Errorf("nil dataset should fail with invalid parameter, got %v", err)
	}
}

type failingModel struct{}

func (failingModel) Name() string { return "failing" }
func (failingModel) Fit(ctx context.Context, train *dataset.Dataset) (ports.Fitted, error) {
	return nil, core.NewModelFitError("failing", "cannot fit anything")
}

func TestRun_AggregatesFoldFailures(t *testing.T) {
	ds := testkit.New(5).BalancedBinary(20)
	d := New(rng.New())

	_, err := d.Run(context.Background(), ds, failingModel{}, Config{
		K:           4,
		Repetitions: 2,
		BaseSeed:    1,
	})
	if err == nil {
		t.Fatal("expected run to fail")
	}

	var runErr *RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected *RunError, got %T: %v", err, err)
	}
	if len(runErr.Failures) == 0 {
		t.Fatal("run error must list the failed folds")
	}
	for _, f := range runErr.Failures {
		if !errors.Is(f.Err, core.ErrModelFit) {
			t.Errorf("failure (r=%d, f=%d) should wrap model fit error, got %v", f.Repetition, f.Fold, f.Err)
		}
	}
	if !errors.Is(err, core.ErrModelFit) {
		t.Error("aggregated error should satisfy errors.Is for the underlying fold error")
	}
}

func TestRun_RepeatedEstimateScenario(t *testing.T) {
	// Cross-check the two granularities: the mean over many repetitions
	// lands inside a single repetition's 95% normal interval.
	ds := testkit.New(6).Noisy(100, 0.3)
	d := New(rng.New())

	cfg := Config{K: 5, Repetitions: 1, BaseSeed: 9, Stratify: true}
	single, err := d.Run(context.Background(), ds, model.NewTree(), cfg)
	if err != nil {
		t.Fatalf("single-repetition run failed: %v", err)
	}
	singleReport, err := aggregate.Summarize(single, 1.96)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	cfg.Repetitions = 200
	many, err := d.Run(context.Background(), ds, model.NewTree(), cfg)
	if err != nil {
		t.Fatalf("repeated run failed: %v", err)
	}
	if len(many) != 1000 {
		t.Fatalf("expected 1000 samples, got %d", len(many))
	}
	manyReport, err := aggregate.Summarize(many, 1.96)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	const slack = 0.02
	if manyReport.Mean < singleReport.Lower-slack || manyReport.Mean > singleReport.Upper+slack {
		t.Errorf("repeated mean %.4f outside single-repetition interval [%.4f, %.4f]",
			manyReport.Mean, singleReport.Lower, singleReport.Upper)
	}
	if math.IsNaN(manyReport.StdDev) || manyReport.StdDev < 0 {
		t.Errorf("invalid std dev %v", manyReport.StdDev)
	}
}
