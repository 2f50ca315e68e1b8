package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scores tracks the fit scores
type Scores struct {
	MSE  float64 `json:"mean_squared_error"`
	MAPE float64 `json:"mean_average_percent_error"`
	R2   float64 `json:"r_squared"`
}

// NewScores calculates the fit scores given the predicted and actual input slice values.
// Pairs with a NaN on either side are skipped.
func NewScores(predicted, actual []float64) (*Scores, error) {
	if len(predicted) != len(actual) {
		return nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	p := make([]float64, 0, len(predicted))
	a := make([]float64, 0, len(actual))
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		p = append(p, predicted[i])
		a = append(a, actual[i])
	}
	if len(a) == 0 {
		return nil, ErrNoData
	}

	var mse, mape float64
	var mapeCnt int
	for i := range a {
		mse += (a[i] - p[i]) * (a[i] - p[i])
		if a[i] != 0 {
			mape += math.Abs((a[i] - p[i]) / a[i])
			mapeCnt++
		}
	}
	mse /= float64(len(a))
	if mapeCnt > 0 {
		mape /= float64(mapeCnt)
	}

	r2 := stat.RSquaredFrom(p, a, nil)
	if math.IsNaN(r2) {
		// constant target
		r2 = 1.0
	}
	return &Scores{MSE: mse, MAPE: mape, R2: r2}, nil
}
