package feature

import (
	"fmt"
	"time"
)

// Time is an intermediate feature derived from the time points, e.g. the epoch in seconds.
// It is never fit directly.
type Time struct {
	Name string `json:"name"`
}

func NewTime(name string) *Time {
	return &Time{name}
}

func (t Time) String() string {
	return fmt.Sprintf("tfeat_%s", t.Name)
}

func (t Time) Get(label string) (string, bool) {
	return getName(t.Name, label)
}

func (t Time) Type() FeatureType {
	return FeatureTypeTime
}

func (t Time) Decode() map[string]string {
	return map[string]string{"name": t.Name}
}

// Generate returns the epoch in seconds of each time point
func (t Time) Generate(tSeries []time.Time) []float64 {
	epoch := make([]float64, len(tSeries))
	for i, tPnt := range tSeries {
		epoch[i] = float64(tPnt.UnixNano()) / 1e9
	}
	return epoch
}
