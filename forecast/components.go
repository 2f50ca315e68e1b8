package forecast

import (
	"sort"

	"github.com/accidentcast/forecaster/feature"
	"gonum.org/v1/gonum/floats"
)

const (
	ComponentTrend           = "trend"
	ComponentHolidays        = "holidays"
	ComponentExtraRegressors = "extra_regressors_additive"
	ComponentAdditiveTerms   = "additive_terms"
)

// Components is the additive decomposition of a prediction. Every model feature belongs to
// exactly one component so the components always sum back to the prediction.
type Components struct {
	Trend       []float64            `json:"trend"`
	Seasonality map[string][]float64 `json:"seasonality"`
	Holidays    []float64            `json:"holidays"`
	Regressors  map[string][]float64 `json:"regressors"`
}

func newComponents(n int, seasonalities, regressors []string) *Components {
	c := &Components{
		Trend:       make([]float64, n),
		Seasonality: make(map[string][]float64, len(seasonalities)),
		Holidays:    make([]float64, n),
		Regressors:  make(map[string][]float64, len(regressors)),
	}
	for _, name := range seasonalities {
		c.Seasonality[name] = make([]float64, n)
	}
	for _, name := range regressors {
		c.Regressors[name] = make([]float64, n)
	}
	return c
}

// ComponentOf names the additive component a feature contributes to. Seasonality and regressor
// features are named after their configuration.
func ComponentOf(f feature.Feature) string {
	switch f.Type() {
	case feature.FeatureTypeGrowth, feature.FeatureTypeChangepoint:
		return ComponentTrend
	case feature.FeatureTypeEvent:
		return ComponentHolidays
	case feature.FeatureTypeSeasonality, feature.FeatureTypeRegressor:
		name, _ := f.Get("name")
		return name
	}
	return ""
}

// componentRank orders components the way the decomposition is reported
func componentRank(typ feature.FeatureType) int {
	switch typ {
	case feature.FeatureTypeGrowth, feature.FeatureTypeChangepoint:
		return 0
	case feature.FeatureTypeSeasonality:
		return 1
	case feature.FeatureTypeEvent:
		return 2
	case feature.FeatureTypeRegressor:
		return 3
	}
	return 4
}

// add accumulates the weighted contribution of a single feature into its component
func (c *Components) add(f feature.Feature, w float64, data []float64) {
	var dst []float64
	switch f.Type() {
	case feature.FeatureTypeGrowth, feature.FeatureTypeChangepoint:
		dst = c.Trend
	case feature.FeatureTypeEvent:
		dst = c.Holidays
	case feature.FeatureTypeSeasonality:
		name, _ := f.Get("name")
		if _, exists := c.Seasonality[name]; !exists {
			c.Seasonality[name] = make([]float64, len(c.Trend))
		}
		dst = c.Seasonality[name]
	case feature.FeatureTypeRegressor:
		name, _ := f.Get("name")
		if _, exists := c.Regressors[name]; !exists {
			c.Regressors[name] = make([]float64, len(c.Trend))
		}
		dst = c.Regressors[name]
	default:
		return
	}
	floats.AddScaled(dst, w, data)
}

// SeasonalityNames returns the seasonality component names in sorted order
func (c *Components) SeasonalityNames() []string {
	return sortedKeys(c.Seasonality)
}

// RegressorNames returns the regressor effect names in sorted order
func (c *Components) RegressorNames() []string {
	return sortedKeys(c.Regressors)
}

// ExtraRegressors is the sum of every regressor effect
func (c *Components) ExtraRegressors() []float64 {
	res := make([]float64, len(c.Trend))
	for _, name := range c.RegressorNames() {
		floats.Add(res, c.Regressors[name])
	}
	return res
}

// AdditiveTerms is the sum of every component except the trend
func (c *Components) AdditiveTerms() []float64 {
	res := make([]float64, len(c.Trend))
	for _, name := range c.SeasonalityNames() {
		floats.Add(res, c.Seasonality[name])
	}
	floats.Add(res, c.Holidays)
	floats.Add(res, c.ExtraRegressors())
	return res
}

// Total returns trend plus additive terms
func (c *Components) Total() []float64 {
	res := c.AdditiveTerms()
	floats.Add(res, c.Trend)
	return res
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
