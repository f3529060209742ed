package dataset

import (
	"math"
	"strconv"
	"strings"

	"gofold/domain/core"
)

// FeatureKind classifies a declared feature column
type FeatureKind string

const (
	KindNumeric     FeatureKind = "numeric"
	KindCategorical FeatureKind = "categorical"
)

// FeatureSpec declares one named feature up front
type FeatureSpec struct {
	Name string      `json:"name"`
	Kind FeatureKind `json:"kind"`
}

// Label is one value from a dataset's fixed, finite class domain
type Label string

// Value holds a single feature value. Numeric features use Num (NaN when
// missing); categorical features use Cat (empty when missing).
type Value struct {
	Num float64 `json:"num,omitempty"`
	Cat string  `json:"cat,omitempty"`
}

// Numeric wraps a numeric feature value
func Numeric(v float64) Value { return Value{Num: v} }

// Categorical wraps a categorical feature value
func Categorical(s string) Value { return Value{Num: math.NaN(), Cat: s} }

// MissingNumeric marks an absent numeric value
func MissingNumeric() Value { return Value{Num: math.NaN()} }

// IsMissing reports whether the value is absent for the given kind
func (v Value) IsMissing(kind FeatureKind) bool {
	if kind == KindNumeric {
		return math.IsNaN(v.Num)
	}
	return v.Cat == ""
}

// Record is one labeled observation: a fixed-width feature vector plus
// one label from the schema's class domain.
type Record struct {
	Values []Value `json:"values"`
	Label  Label   `json:"label"`
}

// Schema fixes the feature layout and label domain of a dataset.
// Malformed feature sets are rejected here, at construction, rather
// than surfacing later during model fitting.
type Schema struct {
	features []FeatureSpec
	index    map[string]int
	labels   []Label
	labelSet map[Label]struct{}
}

// NewSchema validates and builds a schema from feature declarations and
// the label domain. The label domain must contain at least two classes.
func NewSchema(features []FeatureSpec, labels []Label) (*Schema, error) {
	if len(features) == 0 {
		return nil, core.NewInvalidParameterError("features", "must declare at least one feature")
	}
	if len(labels) < 2 {
		return nil, core.NewInvalidParameterError("labels", "must declare at least two classes")
	}

	index := make(map[string]int, len(features))
	for i, f := range features {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return nil, core.NewInvalidParameterError("features", "feature name cannot be empty")
		}
		if _, dup := index[name]; dup {
			return nil, core.NewInvalidParameterError("features", "duplicate feature name "+name)
		}
		if f.Kind != KindNumeric && f.Kind != KindCategorical {
			return nil, core.NewInvalidParameterError("features", "unknown kind "+string(f.Kind)+" for "+name)
		}
		index[name] = i
	}

	labelSet := make(map[Label]struct{}, len(labels))
	for _, l := range labels {
		if l == "" {
			return nil, core.NewInvalidParameterError("labels", "label cannot be empty")
		}
		if _, dup := labelSet[l]; dup {
			return nil, core.NewInvalidParameterError("labels", "duplicate label "+string(l))
		}
		labelSet[l] = struct{}{}
	}

	return &Schema{
		features: append([]FeatureSpec(nil), features...),
		index:    index,
		labels:   append([]Label(nil), labels...),
		labelSet: labelSet,
	}, nil
}

// FeatureCount returns the number of declared features
func (s *Schema) FeatureCount() int {
	return len(s.features)
}

// Features returns the declared features in order
func (s *Schema) Features() []FeatureSpec {
	return append([]FeatureSpec(nil), s.features...)
}

// FeatureIndex returns the position of a named feature
func (s *Schema) FeatureIndex(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Labels returns the label domain in declaration order
func (s *Schema) Labels() []Label {
	return append([]Label(nil), s.labels...)
}

// HasLabel reports whether l belongs to the label domain
func (s *Schema) HasLabel(l Label) bool {
	_, ok := s.labelSet[l]
	return ok
}

// Dataset is an immutable ordered table of labeled records conforming
// to one schema. Access is read-only and index-based.
type Dataset struct {
	schema  *Schema
	records []Record
}

// New validates records against the schema and builds a dataset
func New(schema *Schema, records []Record) (*Dataset, error) {
	if schema == nil {
		return nil, core.NewInvalidParameterError("schema", "cannot be nil")
	}
	for i, r := range records {
		if len(r.Values) != schema.FeatureCount() {
			return nil, core.NewInvalidParameterError("records",
				"record "+strconv.Itoa(i)+" has "+strconv.Itoa(len(r.Values))+
					" values, schema declares "+strconv.Itoa(schema.FeatureCount()))
		}
		if !schema.HasLabel(r.Label) {
			return nil, core.NewInvalidParameterError("records",
				"record "+strconv.Itoa(i)+" label "+string(r.Label)+" outside the label domain")
		}
	}
	return &Dataset{schema: schema, records: records}, nil
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.records)
}

// Schema returns the dataset's schema
func (d *Dataset) Schema() *Schema {
	return d.schema
}

// At returns the record at index i
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Labels returns every record's label in dataset order
func (d *Dataset) Labels() []Label {
	labels := make([]Label, len(d.records))
	for i, r := range d.records {
		labels[i] = r.Label
	}
	return labels
}

// ClassCounts tallies records per label
func (d *Dataset) ClassCounts() map[Label]int {
	counts := make(map[Label]int, len(d.schema.labels))
	for _, r := range d.records {
		counts[r.Label]++
	}
	return counts
}

// Subset returns a new dataset over the given record indices, sharing
// the schema. Records keep the order of the index slice.
func (d *Dataset) Subset(indices []int) (*Dataset, error) {
	records := make([]Record, len(indices))
	for j, idx := range indices {
		if idx < 0 || idx >= len(d.records) {
			return nil, core.NewInvalidParameterError("indices",
				"index "+strconv.Itoa(idx)+" out of range [0,"+strconv.Itoa(len(d.records))+")")
		}
		records[j] = d.records[idx]
	}
	return &Dataset{schema: d.schema, records: records}, nil
}

// Fingerprint computes a stable digest over schema and row data, used
// in run manifests so identical inputs are verifiable across runs.
func (d *Dataset) Fingerprint() core.Fingerprint {
	var data strings.Builder
	for _, f := range d.schema.features {
		data.WriteString(f.Name)
		data.WriteString(string(f.Kind))
		data.WriteByte(0)
	}
	for _, l := range d.schema.labels {
		data.WriteString(string(l))
		data.WriteByte(0)
	}
	for _, r := range d.records {
		for _, v := range r.Values {
			data.WriteString(strconv.FormatFloat(v.Num, 'g', -1, 64))
			data.WriteString(v.Cat)
			data.WriteByte(1)
		}
		data.WriteString(string(r.Label))
		data.WriteByte(0)
	}
	return core.NewFingerprint([]byte(data.String()))
}
