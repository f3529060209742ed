package testkit

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"gofold/domain/core"
	"gofold/domain/dataset"
	"gofold/domain/estimate"
	"gofold/ports"
)

// Kit builds synthetic labeled datasets and in-memory fixtures so
// tests never depend on external files or services.
type Kit struct {
	rng *rand.Rand
}

// New creates a test kit with a deterministic generator
func New(seed int64) *Kit {
	return &Kit{rng: rand.New(rand.NewSource(seed))}
}

// BalancedBinary generates n records over two classes, half each, with
// two numeric features carrying no information about the label. A
// majority-class model scores ~0.5 on stratified folds of this data.
func (k *Kit) BalancedBinary(n int) *dataset.Dataset {
	schema := mustSchema(
		[]dataset.FeatureSpec{
			{Name: "x1", Kind: dataset.KindNumeric},
			{Name: "x2", Kind: dataset.KindNumeric},
		},
		[]dataset.Label{"a", "b"},
	)

	records := make([]dataset.Record, n)
	for i := range records {
		label := dataset.Label("a")
		if i%2 == 1 {
			label = "b"
		}
		records[i] = dataset.Record{
			Values: []dataset.Value{
				dataset.Numeric(k.rng.NormFloat64()),
				dataset.Numeric(k.rng.NormFloat64()),
			},
			Label: label,
		}
	}
	return mustDataset(schema, records)
}

// Separable generates n records where the sign of feature x fully
// determines the label, plus a categorical color feature echoing it.
// Any reasonable tree classifier reaches accuracy 1.0 here.
func (k *Kit) Separable(n int) *dataset.Dataset {
	schema := mustSchema(
		[]dataset.FeatureSpec{
			{Name: "x", Kind: dataset.KindNumeric},
			{Name: "color", Kind: dataset.KindCategorical},
		},
		[]dataset.Label{"neg", "pos"},
	)

	records := make([]dataset.Record, n)
	for i := range records {
		// Magnitudes stay in [0.5, 1.5), so any train-derived split
		// threshold lands strictly inside (-0.5, 0.5) and remains valid
		// for held-out records
		v := 0.5 + k.rng.Float64()
		if i%2 == 1 {
			v = -v
		}
		label := dataset.Label("pos")
		color := "warm"
		if v <= 0 {
			label = "neg"
			color = "cool"
		}
		records[i] = dataset.Record{
			Values: []dataset.Value{dataset.Numeric(v), dataset.Categorical(color)},
			Label:  label,
		}
	}
	return mustDataset(schema, records)
}

// Noisy generates n records where the sign of feature x determines the
// label except for a flip fraction of randomly mislabeled records, so
// classifiers land somewhere strictly between chance and perfection.
func (k *Kit) Noisy(n int, flip float64) *dataset.Dataset {
	schema := mustSchema(
		[]dataset.FeatureSpec{
			{Name: "x", Kind: dataset.KindNumeric},
			{Name: "noise", Kind: dataset.KindNumeric},
		},
		[]dataset.Label{"neg", "pos"},
	)

	records := make([]dataset.Record, n)
	for i := range records {
		v := 0.5 + k.rng.Float64()
		if i%2 == 1 {
			v = -v
		}
		label := dataset.Label("pos")
		if v <= 0 {
			label = "neg"
		}
		if k.rng.Float64() < flip {
			if label == "pos" {
				label = "neg"
			} else {
				label = "pos"
			}
		}
		records[i] = dataset.Record{
			Values: []dataset.Value{
				dataset.Numeric(v),
				dataset.Numeric(k.rng.NormFloat64()),
			},
			Label: label,
		}
	}
	return mustDataset(schema, records)
}

// SingleClass generates n records that all carry the same label. The
// schema still declares two classes; only one occurs in the data.
func (k *Kit) SingleClass(n int) *dataset.Dataset {
	schema := mustSchema(
		[]dataset.FeatureSpec{{Name: "x", Kind: dataset.KindNumeric}},
		[]dataset.Label{"only", "other"},
	)
	records := make([]dataset.Record, n)
	for i := range records {
		records[i] = dataset.Record{
			Values: []dataset.Value{dataset.Numeric(k.rng.Float64())},
			Label:  "only",
		}
	}
	return mustDataset(schema, records)
}

// Reader wraps a fixed dataset as a DatasetReader
func Reader(ds *dataset.Dataset) ports.DatasetReader {
	return staticReader{ds: ds}
}

type staticReader struct {
	ds *dataset.Dataset
}

func (r staticReader) ReadDataset(ctx context.Context) (*dataset.Dataset, error) {
	return r.ds, nil
}

// InMemoryLedger implements the report ledger port over a map
type InMemoryLedger struct {
	mu      sync.Mutex
	reports map[core.RunID]estimate.Report
}

// NewInMemoryLedger creates an empty in-memory ledger
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{reports: make(map[core.RunID]estimate.Report)}
}

func (l *InMemoryLedger) SaveReport(ctx context.Context, report *estimate.Report) error {
	if report == nil || report.RunID == "" {
		return core.NewInvalidParameterError("report", "must carry a run ID")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reports[report.RunID] = *report
	return nil
}

func (l *InMemoryLedger) GetReport(ctx context.Context, runID core.RunID) (*estimate.Report, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	report, ok := l.reports[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrReportNotFound, runID)
	}
	return &report, nil
}

func (l *InMemoryLedger) ListReports(ctx context.Context, limit int) ([]estimate.Report, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]string, 0, len(l.reports))
	for id := range l.reports {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	var out []estimate.Report
	for _, id := range ids {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, l.reports[core.RunID(id)])
	}
	return out, nil
}

func mustSchema(features []dataset.FeatureSpec, labels []dataset.Label) *dataset.Schema {
	schema, err := dataset.NewSchema(features, labels)
	if err != nil {
		panic(err)
	}
	return schema
}

func mustDataset(schema *dataset.Schema, records []dataset.Record) *dataset.Dataset {
	ds, err := dataset.New(schema, records)
	if err != nil {
		panic(err)
	}
	return ds
}
