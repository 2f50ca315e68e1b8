package feature

import (
	"fmt"
	"time"
)

const (
	GrowthIntercept = "intercept"
	GrowthLinear    = "linear"
)

// Growth represents the base level and the long term slope of the trend
type Growth struct {
	Name string `json:"name"`
}

func NewGrowth(name string) *Growth {
	return &Growth{name}
}

// Intercept is the constant growth feature
func Intercept() *Growth {
	return NewGrowth(GrowthIntercept)
}

// Linear is the growth feature scaled to 0 at the training start and 1 at the training end
func Linear() *Growth {
	return NewGrowth(GrowthLinear)
}

// String returns the string representation of the growth feature
func (g Growth) String() string {
	return fmt.Sprintf("growth_%s", g.Name)
}

// Get returns the value of an arbitrary label and whether the label exists
func (g Growth) Get(label string) (string, bool) {
	return getName(g.Name, label)
}

// Type returns the type of this feature
func (g Growth) Type() FeatureType {
	return FeatureTypeGrowth
}

// Decode converts the feature into a map of label values
func (g Growth) Decode() map[string]string {
	return map[string]string{"name": g.Name}
}

// Generate computes the growth feature from epoch seconds. The linear feature is
// normalized over the training window so the coefficient reads as growth over that window.
func (g Growth) Generate(epoch []float64, trainStart, trainEnd time.Time) []float64 {
	res := make([]float64, len(epoch))
	switch g.Name {
	case GrowthIntercept:
		for i := range res {
			res[i] = 1.0
		}
	case GrowthLinear:
		start := float64(trainStart.Unix())
		span := trainEnd.Sub(trainStart).Seconds()
		if span <= 0 {
			return res
		}
		for i, e := range epoch {
			res[i] = (e - start) / span
		}
	}
	return res
}
