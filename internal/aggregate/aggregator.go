package aggregate

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"gofold/domain/core"
	"gofold/domain/estimate"
)

// Summarize collapses a sample collection into an estimate report
// using the normal-approximation interval mean ± z·stddev. Pure
// function: identical samples and z always yield identical reports.
//
// This is not a percentile bootstrap interval; callers needing exact
// coverage over the raw samples should use SummarizePercentile.
func Summarize(samples estimate.SampleCollection, z float64) (*estimate.Report, error) {
	if z <= 0 {
		return nil, core.NewInvalidParameterError("confidence_z", "must be positive")
	}
	values, mean, stdDev, err := describe(samples)
	if err != nil {
		return nil, err
	}

	return &estimate.Report{
		Mean:          mean,
		StdDev:        stdDev,
		StandardError: stdDev / math.Sqrt(float64(len(values))),
		Lower:         mean - z*stdDev,
		Upper:         mean + z*stdDev,
		Z:             z,
		N:             len(values),
		Method:        estimate.MethodNormal,
		Samples:       values,
	}, nil
}

// SummarizeLevel is Summarize with z derived from a two-sided
// confidence level in (0,1), e.g. 0.95 -> z ≈ 1.96.
func SummarizeLevel(samples estimate.SampleCollection, level float64) (*estimate.Report, error) {
	if level <= 0 || level >= 1 {
		return nil, core.NewInvalidParameterError("confidence_level", "must be in (0,1)")
	}
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	return Summarize(samples, normal.Quantile(0.5+level/2))
}

// SummarizePercentile bounds the interval by empirical percentiles of
// the raw samples instead of the normal approximation.
func SummarizePercentile(samples estimate.SampleCollection, level float64) (*estimate.Report, error) {
	if level <= 0 || level >= 1 {
		return nil, core.NewInvalidParameterError("confidence_level", "must be in (0,1)")
	}
	values, mean, stdDev, err := describe(samples)
	if err != nil {
		return nil, err
	}

	alpha := (1 - level) / 2 * 100
	lower, err := stats.Percentile(values, alpha)
	if err != nil {
		return nil, fmt.Errorf("computing lower percentile: %w", err)
	}
	upper, err := stats.Percentile(values, 100-alpha)
	if err != nil {
		return nil, fmt.Errorf("computing upper percentile: %w", err)
	}

	return &estimate.Report{
		Mean:          mean,
		StdDev:        stdDev,
		StandardError: stdDev / math.Sqrt(float64(len(values))),
		Lower:         lower,
		Upper:         upper,
		N:             len(values),
		Method:        estimate.MethodPercentile,
		Samples:       values,
	}, nil
}

// StandardError computes the standard error of the mean, stddev/√n
func StandardError(values []float64) (float64, error) {
	if len(values) < 2 {
		return 0, core.NewInsufficientDataError(len(values), 2)
	}
	stdDev, err := stats.StandardDeviationSample(values)
	if err != nil {
		return 0, fmt.Errorf("computing standard deviation: %w", err)
	}
	return stdDev / math.Sqrt(float64(len(values))), nil
}

// describe extracts accuracies and computes mean and sample standard
// deviation (n-1 denominator). Fewer than 2 samples leaves the
// standard deviation undefined.
func describe(samples estimate.SampleCollection) ([]float64, float64, float64, error) {
	if len(samples) < 2 {
		return nil, 0, 0, core.NewInsufficientDataError(len(samples), 2)
	}
	values := samples.Accuracies()

	mean, err := stats.Mean(values)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("computing mean: %w", err)
	}
	stdDev, err := stats.StandardDeviationSample(values)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("computing standard deviation: %w", err)
	}
	return values, mean, stdDev, nil
}
