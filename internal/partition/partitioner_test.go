package partition

import (
	"reflect"
	"testing"

	"gofold/domain/core"
	"gofold/internal/testkit"
)

func TestPartition_CoversEveryIndexExactlyOnce(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		k        int
		stratify bool
	}{
		{name: "stratified 100/5", n: 100, k: 5, stratify: true},
		{name: "random 100/5", n: 100, k: 5, stratify: false},
		{name: "uneven 103/5", n: 103, k: 5, stratify: true},
		{name: "leave-one-out", n: 20, k: 20, stratify: true},
		{name: "two folds", n: 10, k: 2, stratify: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := testkit.New(1).BalancedBinary(tt.n)
			folds, err := New(tt.stratify).Partition(ds, tt.k, 7)
			if err != nil {
				t.Fatalf("Partition failed: %v", err)
			}
			if len(folds) != tt.k {
				t.Fatalf("expected %d folds, got %d", tt.k, len(folds))
			}

			seen := make(map[int]int)
			total := 0
			for _, fold := range folds {
				total += len(fold)
				for _, idx := range fold {
					seen[idx]++
				}
			}
			if total != tt.n {
				t.Errorf("fold sizes sum to %d, want %d", total, tt.n)
			}
			for idx := 0; idx < tt.n; idx++ {
				if seen[idx] != 1 {
					t.Errorf("index %d assigned %d times", idx, seen[idx])
				}
			}

			// Sizes differ by at most one record
			min, max := tt.n, 0
			for _, fold := range folds {
				if len(fold) < min {
					min = len(fold)
				}
				if len(fold) > max {
					max = len(fold)
				}
			}
			if max-min > 1 {
				t.Errorf("fold sizes range from %d to %d, want spread <= 1", min, max)
			}
		})
	}
}

func TestPartition_StratificationBalancesClasses(t *testing.T) {
	ds := testkit.New(2).BalancedBinary(100) // 50 of each class
	folds, err := New(true).Partition(ds, 5, 11)
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}

	for f, fold := range folds {
		counts := make(map[string]int)
		for _, idx := range fold {
			counts[string(ds.At(idx).Label)]++
		}
		if counts["a"] != 10 || counts["b"] != 10 {
			t.Errorf("fold %d class counts %v, want 10/10", f, counts)
		}
	}
}

func TestPartition_InvalidParameters(t *testing.T) {
	ds := testkit.New(3).BalancedBinary(10)
	p := New(true)

	if _, err := p.Partition(ds, 1, 0); !core.IsInvalidParameterError(err) {
		t.Errorf("k=1 should fail with invalid parameter, got %v", err)
	}
	if _, err := p.Partition(ds, 11, 0); !core.IsInvalidParameterError(err) {
		t.Errorf("k>n should fail with invalid parameter, got %v", err)
	}
	if _, err := p.Partition(nil, 2, 0); !core.IsInvalidParameterError(err) {
		t.Errorf("nil dataset should fail with invalid parameter, got %v", err)
	}
}

func TestPartition_DeterministicPerSeed(t *testing.T) {
	ds := testkit.New(4).BalancedBinary(60)
	p := New(true)

	a, _ := p.Partition(ds, 5, 99)
	b, _ := p.Partition(ds, 5, 99)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed must produce identical folds")
	}

	c, _ := p.Partition(ds, 5, 100)
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds should produce different folds")
	}
}

func TestTrainIndices_ExcludesHeldOutFold(t *testing.T) {
	folds := [][]int{{0, 1}, {2, 3}, {4, 5}}
	train := TrainIndices(folds, 1)
	if !reflect.DeepEqual(train, []int{0, 1, 4, 5}) {
		t.Errorf("got %v, want [0 1 4 5]", train)
	}
}
