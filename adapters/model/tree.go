package model

import (
	"context"
	"math"
	"sort"

	"gofold/domain/core"
	"gofold/domain/dataset"
	"gofold/ports"
)

// Tree is a CART-style decision tree classifier with gini splits over
// numeric and categorical features. Splitting is fully deterministic:
// features are scanned in schema order and candidate thresholds in
// sorted order, so identical training data always yields the identical
// tree.
type Tree struct {
	MaxDepth        int // maximum depth, root depth = 0; 0 => no limit
	MinSamplesSplit int // minimum records to attempt a split
	MinSamplesLeaf  int // minimum records in each child

	// RequireClassDiversity makes Fit fail on a single-class training
	// subset instead of producing a trivial one-leaf tree.
	RequireClassDiversity bool
}

// TreeOption is functional config for Tree
type TreeOption func(*Tree)

func WithMaxDepth(d int) TreeOption        { return func(t *Tree) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) TreeOption { return func(t *Tree) { t.MinSamplesSplit = n } }
func WithMinSamplesLeaf(n int) TreeOption  { return func(t *Tree) { t.MinSamplesLeaf = n } }
func WithRequireClassDiversity() TreeOption {
	return func(t *Tree) { t.RequireClassDiversity = true }
}

// NewTree returns a tree classifier with sensible defaults
func NewTree(opts ...TreeOption) *Tree {
	t := &Tree{
		MaxDepth:        8,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Name identifies the model family
func (t *Tree) Name() string { return "decision_tree" }

// Fit grows a fresh tree on the training subset
func (t *Tree) Fit(ctx context.Context, train *dataset.Dataset) (ports.Fitted, error) {
	if train == nil || train.Len() == 0 {
		return nil, core.NewModelFitError(t.Name(), "empty training subset")
	}

	if t.RequireClassDiversity && len(train.ClassCounts()) < 2 {
		return nil, core.NewModelFitError(t.Name(), "degenerate single-class training subset")
	}

	features := train.Schema().Features()
	records := make([]dataset.Record, train.Len())
	for i := 0; i < train.Len(); i++ {
		records[i] = train.At(i)
	}

	root := t.grow(records, features, 0)
	return &fittedTree{root: root}, nil
}

type treeNode struct {
	leaf  bool
	label dataset.Label

	feature   int
	kind      dataset.FeatureKind
	threshold float64 // numeric: v <= threshold goes left
	category  string  // categorical: v == category goes left
	left      *treeNode
	right     *treeNode
}

type split struct {
	feature   int
	kind      dataset.FeatureKind
	threshold float64
	category  string
	gain      float64
	left      []dataset.Record
	right     []dataset.Record
}

func (t *Tree) grow(records []dataset.Record, features []dataset.FeatureSpec, depth int) *treeNode {
	label := majorityLabel(records)

	if len(records) < t.MinSamplesSplit || gini(records) == 0 {
		return &treeNode{leaf: true, label: label}
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		return &treeNode{leaf: true, label: label}
	}

	best := t.bestSplit(records, features)
	if best == nil {
		return &treeNode{leaf: true, label: label}
	}

	return &treeNode{
		feature:   best.feature,
		kind:      best.kind,
		threshold: best.threshold,
		category:  best.category,
		left:      t.grow(best.left, features, depth+1),
		right:     t.grow(best.right, features, depth+1),
	}
}

func (t *Tree) bestSplit(records []dataset.Record, features []dataset.FeatureSpec) *split {
	parent := gini(records)
	var best *split

	for fi, spec := range features {
		switch spec.Kind {
		case dataset.KindNumeric:
			for _, threshold := range numericThresholds(records, fi) {
				cand := t.trySplit(records, fi, spec.Kind, threshold, "")
				if cand != nil {
					cand.gain = parent - weightedGini(cand)
					if cand.gain > 1e-12 && (best == nil || cand.gain > best.gain) {
						best = cand
					}
				}
			}
		case dataset.KindCategorical:
			for _, category := range categories(records, fi) {
				cand := t.trySplit(records, fi, spec.Kind, 0, category)
				if cand != nil {
					cand.gain = parent - weightedGini(cand)
					if cand.gain > 1e-12 && (best == nil || cand.gain > best.gain) {
						best = cand
					}
				}
			}
		}
	}
	return best
}

// trySplit partitions records for one candidate. Missing values always
// go right. Returns nil when a child would be under the leaf minimum.
func (t *Tree) trySplit(records []dataset.Record, feature int, kind dataset.FeatureKind, threshold float64, category string) *split {
	var left, right []dataset.Record
	for _, r := range records {
		v := r.Values[feature]
		goLeft := false
		if kind == dataset.KindNumeric {
			goLeft = !math.IsNaN(v.Num) && v.Num <= threshold
		} else {
			goLeft = v.Cat != "" && v.Cat == category
		}
		if goLeft {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	if len(left) < t.MinSamplesLeaf || len(right) < t.MinSamplesLeaf {
		return nil
	}
	return &split{
		feature:   feature,
		kind:      kind,
		threshold: threshold,
		category:  category,
		left:      left,
		right:     right,
	}
}

func weightedGini(s *split) float64 {
	n := float64(len(s.left) + len(s.right))
	return float64(len(s.left))/n*gini(s.left) + float64(len(s.right))/n*gini(s.right)
}

func gini(records []dataset.Record) float64 {
	counts := make(map[dataset.Label]int)
	for _, r := range records {
		counts[r.Label]++
	}
	n := float64(len(records))
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / n
		impurity -= p * p
	}
	return impurity
}

func majorityLabel(records []dataset.Record) dataset.Label {
	counts := make(map[dataset.Label]int)
	for _, r := range records {
		counts[r.Label]++
	}
	var best dataset.Label
	bestCount := -1
	for label, count := range counts {
		if count > bestCount || (count == bestCount && label < best) {
			best = label
			bestCount = count
		}
	}
	return best
}

// numericThresholds returns midpoints between consecutive distinct
// non-missing values, in ascending order
func numericThresholds(records []dataset.Record, feature int) []float64 {
	values := make([]float64, 0, len(records))
	for _, r := range records {
		if v := r.Values[feature].Num; !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	sort.Float64s(values)

	var thresholds []float64
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1] {
			thresholds = append(thresholds, (values[i]+values[i-1])/2)
		}
	}
	return thresholds
}

// categories returns distinct non-missing category values in sorted order
func categories(records []dataset.Record, feature int) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if c := r.Values[feature].Cat; c != "" {
			seen[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

type fittedTree struct {
	root *treeNode
}

func (f *fittedTree) Predict(records []dataset.Record) ([]dataset.Label, error) {
	labels := make([]dataset.Label, len(records))
	for i, r := range records {
		labels[i] = f.classify(f.root, r)
	}
	return labels, nil
}

func (f *fittedTree) classify(node *treeNode, r dataset.Record) dataset.Label {
	for !node.leaf {
		v := r.Values[node.feature]
		goLeft := false
		if node.kind == dataset.KindNumeric {
			goLeft = !math.IsNaN(v.Num) && v.Num <= node.threshold
		} else {
			goLeft = v.Cat != "" && v.Cat == node.category
		}
		if goLeft {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.label
}
