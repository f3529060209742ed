package partition

import (
	"math/rand"
	"sort"
	"strconv"

	"gofold/domain/core"
	"gofold/domain/dataset"
)

// Partitioner splits a dataset's index range into k disjoint folds.
// This is deterministic k-fold partitioning: every index lands in
// exactly one fold. It is not a bootstrap resample — membership never
// repeats — and it is unrelated to the label-permutation resampling
// used for hypothesis testing.
type Partitioner struct {
	stratify bool
}

// New creates a partitioner. With stratify set, each fold approximates
// the dataset's overall class proportions.
func New(stratify bool) *Partitioner {
	return &Partitioner{stratify: stratify}
}

// Partition assigns every record index to exactly one of k folds.
// Pure function of (dataset, k, seed): identical arguments always
// produce identical folds. Fold sizes differ by at most one record.
func (p *Partitioner) Partition(ds *dataset.Dataset, k int, seed int64) ([][]int, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, core.NewInvalidParameterError("dataset", "cannot be empty")
	}
	n := ds.Len()
	if k < 2 {
		return nil, core.NewInvalidParameterError("k", "must be at least 2, got "+strconv.Itoa(k))
	}
	if k > n {
		return nil, core.NewInvalidParameterError("k",
			"cannot exceed record count: k="+strconv.Itoa(k)+", n="+strconv.Itoa(n))
	}

	rng := rand.New(rand.NewSource(seed))
	if p.stratify {
		return p.stratifiedFolds(ds, k, rng), nil
	}
	return p.randomFolds(n, k, rng), nil
}

// randomFolds shuffles the index range and deals it round-robin
func (p *Partitioner) randomFolds(n, k int, rng *rand.Rand) [][]int {
	indices := rng.Perm(n)
	folds := make([][]int, k)
	start := rng.Intn(k) // rotate which folds receive the extra records
	for i, idx := range indices {
		f := (start + i) % k
		folds[f] = append(folds[f], idx)
	}
	return folds
}

// stratifiedFolds shuffles within each class and deals all strata
// round-robin with a continuing cursor, so per-class counts across
// folds differ by at most one.
func (p *Partitioner) stratifiedFolds(ds *dataset.Dataset, k int, rng *rand.Rand) [][]int {
	strata := make(map[dataset.Label][]int)
	for i := 0; i < ds.Len(); i++ {
		label := ds.At(i).Label
		strata[label] = append(strata[label], i)
	}

	// Deterministic stratum order; map iteration order is not
	labels := make([]string, 0, len(strata))
	for l := range strata {
		labels = append(labels, string(l))
	}
	sort.Strings(labels)

	folds := make([][]int, k)
	cursor := rng.Intn(k)
	for _, l := range labels {
		stratum := strata[dataset.Label(l)]
		rng.Shuffle(len(stratum), func(i, j int) {
			stratum[i], stratum[j] = stratum[j], stratum[i]
		})
		for _, idx := range stratum {
			folds[cursor%k] = append(folds[cursor%k], idx)
			cursor++
		}
	}
	return folds
}

// TrainIndices concatenates every fold except the held-out one,
// preserving fold order.
func TrainIndices(folds [][]int, heldOut int) []int {
	var train []int
	for f, fold := range folds {
		if f == heldOut {
			continue
		}
		train = append(train, fold...)
	}
	return train
}
