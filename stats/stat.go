// Package stats holds the residual statistics used while fitting a forecaster.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrNoData            = errors.New("no data")
	ErrResLenMismatch    = errors.New("predicted and actual have different lengths")
	ErrWindowTooLarge    = errors.New("window is larger than the series")
	ErrInvalidPercentile = errors.New("lower percentile must be below upper percentile")
)

// DetectOutliers returns the indexes of the points outside the percentile range widened by
// tukeyFactor times the inner range. NaNs are never outliers.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) ([]int, error) {
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)
	if lowerPerc >= upperPerc {
		return nil, fmt.Errorf("%.3f >= %.3f, %w", lowerPerc, upperPerc, ErrInvalidPercentile)
	}

	sorted := make([]float64, 0, len(y))
	for _, v := range y {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return nil, ErrNoData
	}
	sort.Float64s(sorted)

	lower := stat.Quantile(lowerPerc, stat.Empirical, sorted, nil)
	upper := stat.Quantile(upperPerc, stat.Empirical, sorted, nil)
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i, v := range y {
		if math.IsNaN(v) {
			continue
		}
		if v > upper || v < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx, nil
}

// RollingStdDev computes the standard deviation of every full window of size window
// skipping NaNs. A window made only of NaNs yields NaN.
func RollingStdDev(y []float64, window int) ([]float64, error) {
	if window < 1 || window > len(y) {
		return nil, fmt.Errorf("window %d over %d points, %w", window, len(y), ErrWindowTooLarge)
	}
	res := make([]float64, len(y)-window+1)
	buf := make([]float64, 0, window)
	for i := range res {
		buf = buf[:0]
		for _, v := range y[i : i+window] {
			if !math.IsNaN(v) {
				buf = append(buf, v)
			}
		}
		switch len(buf) {
		case 0:
			res[i] = math.NaN()
		case 1:
			res[i] = 0
		default:
			_, res[i] = stat.MeanStdDev(buf, nil)
		}
	}
	return res, nil
}

// MeanStdDev returns the mean and standard deviation ignoring NaNs
func MeanStdDev(y []float64) (float64, float64) {
	vals := make([]float64, 0, len(y))
	for _, v := range y {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	switch len(vals) {
	case 0:
		return 0, 0
	case 1:
		return vals[0], 0
	}
	return stat.MeanStdDev(vals, nil)
}
