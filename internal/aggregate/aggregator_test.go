package aggregate

import (
	"math"
	"testing"

	"gofold/domain/core"
	"gofold/domain/estimate"
)

func collection(accuracies ...float64) estimate.SampleCollection {
	samples := make(estimate.SampleCollection, len(accuracies))
	for i, a := range accuracies {
		samples[i] = estimate.FoldScore{Repetition: 0, Fold: i, Accuracy: a}
	}
	return samples
}

func TestSummarize_KnownValues(t *testing.T) {
	// mean of {0.5, 0.7} is 0.6; sample std dev is 0.1·√2
	samples := collection(0.5, 0.7)
	report, err := Summarize(samples, 2.0)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	wantStdDev := 0.1 * math.Sqrt2
	if math.Abs(report.Mean-0.6) > 1e-12 {
		t.Errorf("mean = %v, want 0.6", report.Mean)
	}
	if math.Abs(report.StdDev-wantStdDev) > 1e-12 {
		t.Errorf("std dev = %v, want %v", report.StdDev, wantStdDev)
	}
	if math.Abs(report.StandardError-wantStdDev/math.Sqrt2) > 1e-12 {
		t.Errorf("standard error = %v, want %v", report.StandardError, wantStdDev/math.Sqrt2)
	}
	if math.Abs(report.Lower-(0.6-2*wantStdDev)) > 1e-12 {
		t.Errorf("lower = %v, want %v", report.Lower, 0.6-2*wantStdDev)
	}
	if math.Abs(report.Upper-(0.6+2*wantStdDev)) > 1e-12 {
		t.Errorf("upper = %v, want %v", report.Upper, 0.6+2*wantStdDev)
	}
	if report.N != 2 {
		t.Errorf("N = %d, want 2", report.N)
	}
	if report.Method != estimate.MethodNormal {
		t.Errorf("method = %q, want %q", report.Method, estimate.MethodNormal)
	}
}

func TestSummarize_SingleSampleInsufficient(t *testing.T) {
	_, err := Summarize(collection(0.8), 1.96)
	if !core.IsInsufficientDataError(err) {
		t.Fatalf("expected insufficient data error, got %v", err)
	}
}

func TestSummarize_RejectsNonPositiveZ(t *testing.T) {
	for _, z := range []float64{0, -1.96} {
		if _, err := Summarize(collection(0.5, 0.7), z); !core.IsInvalidParameterError(err) {
			t.Errorf("z=%v should fail with invalid parameter, got %v", z, err)
		}
	}
}

func TestSummarize_Pure(t *testing.T) {
	samples := collection(0.61, 0.58, 0.64, 0.55, 0.62)
	a, err := Summarize(samples, 1.96)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	b, err := Summarize(samples, 1.96)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if a.Mean != b.Mean || a.StdDev != b.StdDev || a.Lower != b.Lower || a.Upper != b.Upper {
		t.Error("identical inputs must yield identical reports")
	}
}

func TestSummarizeLevel_QuantileMapping(t *testing.T) {
	report, err := SummarizeLevel(collection(0.5, 0.7, 0.6), 0.95)
	if err != nil {
		t.Fatalf("SummarizeLevel failed: %v", err)
	}
	if math.Abs(report.Z-1.959964) > 1e-3 {
		t.Errorf("z for 95%% level = %v, want ~1.96", report.Z)
	}

	for _, level := range []float64{0, 1, -0.5, 1.5} {
		if _, err := SummarizeLevel(collection(0.5, 0.7), level); !core.IsInvalidParameterError(err) {
			t.Errorf("level=%v should fail with invalid parameter, got %v", level, err)
		}
	}
}

func TestSummarizePercentile_BoundsOrdering(t *testing.T) {
	samples := collection(0.40, 0.45, 0.50, 0.55, 0.60, 0.65, 0.70, 0.75, 0.80, 0.85)
	report, err := SummarizePercentile(samples, 0.9)
	if err != nil {
		t.Fatalf("SummarizePercentile failed: %v", err)
	}

	if report.Method != estimate.MethodPercentile {
		t.Errorf("method = %q, want %q", report.Method, estimate.MethodPercentile)
	}
	if report.Lower > report.Mean || report.Mean > report.Upper {
		t.Errorf("bounds out of order: lower=%v mean=%v upper=%v", report.Lower, report.Mean, report.Upper)
	}
	if report.Lower < 0.40 || report.Upper > 0.85 {
		t.Errorf("percentile bounds [%v, %v] escape the sample range", report.Lower, report.Upper)
	}
}

func TestStandardError(t *testing.T) {
	se, err := StandardError([]float64{0.5, 0.7})
	if err != nil {
		t.Fatalf("StandardError failed: %v", err)
	}
	if math.Abs(se-0.1) > 1e-12 {
		t.Errorf("standard error = %v, want 0.1", se)
	}

	if _, err := StandardError([]float64{0.5}); !core.IsInsufficientDataError(err) {
		t.Errorf("expected insufficient data error, got %v", err)
	}
}
