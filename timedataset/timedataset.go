// Package timedataset holds aligned time/value series and the daily date scaffolds used to
// fit and extend forecasts.
package timedataset

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
	ErrInvalidRange       = errors.New("range end is before range start")
)

const Day = 24 * time.Hour

// TimeDataset represents a time series storing a slice of time points and values.
// Both must be of the same length.
type TimeDataset struct {
	T []time.Time
	Y []float64
}

// NewUnivariateDataset returns an instance of a TimeDataset given a time and value slice.
// The time points must be strictly increasing.
func NewUnivariateDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	for i := 1; i < len(t); i++ {
		if !t[i].After(t[i-1]) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
	}

	td := &TimeDataset{
		T: make([]time.Time, len(t)),
		Y: make([]float64, len(y)),
	}
	copy(td.T, t)
	copy(td.Y, y)
	return td, nil
}

func (td *TimeDataset) Copy() *TimeDataset {
	res := &TimeDataset{
		T: make([]time.Time, len(td.T)),
		Y: make([]float64, len(td.Y)),
	}
	copy(res.T, td.T)
	copy(res.Y, td.Y)
	return res
}

// Len returns the number of observations
func (td *TimeDataset) Len() int {
	return len(td.T)
}

// Midnight truncates a time point to the start of its calendar day in UTC. The wall clock
// date is kept, so 2021-03-01T23:00:00+02:00 becomes 2021-03-01T00:00:00Z.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DailyRange returns every calendar day from start through end inclusive, at UTC midnight.
func DailyRange(start, end time.Time) ([]time.Time, error) {
	start, end = Midnight(start), Midnight(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%s before %s, %w", end.Format(time.DateOnly), start.Format(time.DateOnly), ErrInvalidRange)
	}
	n := int(end.Sub(start)/Day) + 1
	res := make([]time.Time, n)
	for i := range res {
		res[i] = start.AddDate(0, 0, i)
	}
	return res, nil
}

// FutureFrame returns the daily scaffold covering the history from histStart to histEnd
// followed by days further calendar days.
func FutureFrame(histStart, histEnd time.Time, days int) ([]time.Time, error) {
	if days < 0 {
		return nil, fmt.Errorf("negative horizon %d, %w", days, ErrInvalidRange)
	}
	return DailyRange(histStart, Midnight(histEnd).AddDate(0, 0, days))
}
