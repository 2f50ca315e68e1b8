package options

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/accidentcast/forecaster/feature"
	"github.com/accidentcast/forecaster/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailyT(start time.Time, n int) []time.Time {
	return timedataset.GenerateDaily(start, n)
}

func TestGenerateFeaturesLabels(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	tSeries := dailyT(start, 30)

	opt := NewDefaultOptions()
	opt.HolidayOptions.Country = ""
	opt.RegressorOptions.Regressors = []Regressor{NewRegressor("trafic")}
	opt.EventOptions.Events = []Event{NewEvent("greve", start.AddDate(0, 0, 3), start.AddDate(0, 0, 5))}

	feat, err := opt.GenerateFeatures(tSeries, start, tSeries[len(tSeries)-1], nil)
	require.NoError(t, err)

	expectedTypes := map[feature.FeatureType]int{
		feature.FeatureTypeGrowth:      2,
		feature.FeatureTypeSeasonality: 2*DefaultWeeklyOrders + 2*DefaultYearlyOrders,
		feature.FeatureTypeEvent:       1,
		feature.FeatureTypeRegressor:   1,
	}
	counts := make(map[feature.FeatureType]int)
	for _, f := range feat.Labels().Labels() {
		counts[f.Type()]++
	}
	for typ, cnt := range expectedTypes {
		assert.Equal(t, cnt, counts[typ], string(typ))
	}
	assert.Equal(t, 2+2*DefaultWeeklyOrders+2*DefaultYearlyOrders+1+1, feat.Len())

	greve, exists := feat.Get(feature.NewEvent("greve"))
	require.True(t, exists)
	assert.Equal(t, []float64{0, 0, 0, 1, 1, 0}, greve[:6])

	trafic, exists := feat.Get(feature.NewRegressor("trafic"))
	require.True(t, exists)
	assert.Equal(t, make([]float64, 30), trafic)
}

func TestGenerateFeaturesPointwise(t *testing.T) {
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	hist := dailyT(start, 365)
	extended := dailyT(start, 400)
	trainEnd := hist[len(hist)-1]

	opt := NewDefaultOptions()
	opt.ChangepointOptions.Changepoints = []Changepoint{NewChangepoint("mid", start.AddDate(0, 6, 0))}
	opt.HolidayOptions.DaysBefore = 2
	opt.HolidayOptions.DaysAfter = 2
	opt.MaskWindow = WindowHann

	histFeat, err := opt.GenerateFeatures(hist, start, trainEnd, nil)
	require.NoError(t, err)
	extFeat, err := opt.GenerateFeatures(extended, start, trainEnd, nil)
	require.NoError(t, err)

	for _, f := range histFeat.Labels().Labels() {
		h, _ := histFeat.Get(f)
		e, exists := extFeat.Get(f)
		require.True(t, exists, f.String())
		assert.InDeltaSlice(t, h, e[:len(h)], 1e-12, f.String())
	}
}

func TestChangepointFeatures(t *testing.T) {
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	tSeries := dailyT(start, 5)
	trainEnd := tSeries[4]

	c := ChangepointOptions{
		EnableGrowth: true,
		Changepoints: []Changepoint{
			NewChangepoint("a", tSeries[2]),
			NewChangepoint("late", tSeries[4]),
		},
	}
	feat := c.GenerateFeatures(tSeries, trainEnd)
	assert.Equal(t, 2, feat.Len())

	bias, _ := feat.Get(feature.NewChangepoint("a", feature.ChangepointCompBias))
	assert.Equal(t, []float64{0, 0, 1, 1, 1}, bias)
	slope, _ := feat.Get(feature.NewChangepoint("a", feature.ChangepointCompSlope))
	assert.InDeltaSlice(t, []float64{0, 0, 0, 0.5, 1}, slope, 1e-12)
}

func TestGenerateAutoChangepoints(t *testing.T) {
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	tSeries := dailyT(start, 101)

	testData := map[string]struct {
		opt      ChangepointOptions
		expected []time.Time
	}{
		"disabled": {
			opt: ChangepointOptions{AutoNumChangepoints: 4},
		},
		"four over 80 percent": {
			opt: ChangepointOptions{Auto: true, AutoNumChangepoints: 4, AutoRange: 0.8},
			expected: []time.Time{
				start.AddDate(0, 0, 20),
				start.AddDate(0, 0, 40),
				start.AddDate(0, 0, 60),
				start.AddDate(0, 0, 80),
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			chpts := td.opt.GenerateAutoChangepoints(tSeries)
			res := make([]time.Time, 0, len(chpts))
			for _, c := range chpts {
				res = append(res, c.T)
			}
			if td.expected == nil {
				assert.Empty(t, res)
				return
			}
			assert.Equal(t, td.expected, res)
			assert.Equal(t, chpts, td.opt.Changepoints)
		})
	}
}

func TestSeasonalityValidConfigs(t *testing.T) {
	s := SeasonalityOptions{
		SeasonalityConfigs: []SeasonalityConfig{
			NewYearlySeasonalityConfig(10),
			NewWeeklySeasonalityConfig(3),
			NewSeasonalityConfig("weekly_dup", 7*24*time.Hour, 1),
			NewSeasonalityConfig("", 30*24*time.Hour, 2),
			NewSeasonalityConfig("none", 30*24*time.Hour, 0),
		},
	}
	assert.Equal(t, []string{LabelSeasWeekly, LabelSeasYearly}, s.Names())
	assert.Equal(t, 26, s.GenerateFeatures([]float64{0}).Len())
}

func TestHolidayEvents(t *testing.T) {
	testData := map[string]struct {
		opt   HolidayOptions
		check func(t *testing.T, events []Event)
		err   error
	}{
		"disabled": {
			check: func(t *testing.T, events []Event) {
				assert.Empty(t, events)
			},
		},
		"unknown country": {
			opt: HolidayOptions{Country: "xx"},
			err: ErrUnknownCountry,
		},
		"bastille day with window": {
			opt: HolidayOptions{Country: CountryFrance, DaysBefore: 1, DaysAfter: 2},
			check: func(t *testing.T, events []Event) {
				july14 := time.Date(2021, 7, 14, 0, 0, 0, 0, time.UTC)
				var found bool
				for _, ev := range events {
					if ev.Start.Equal(july14.AddDate(0, 0, -1)) {
						found = true
						assert.Equal(t, july14.AddDate(0, 0, 3), ev.End)
					}
				}
				assert.True(t, found)
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			events, err := td.opt.Events(2021, 2021)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			td.check(t, events)
		})
	}
}

func TestHolidayMaskChristmas(t *testing.T) {
	start := time.Date(2020, 12, 20, 0, 0, 0, 0, time.UTC)
	tSeries := dailyT(start, 10)
	feat, err := NewDefaultHolidayOptions().GenerateFeatures(tSeries, "")
	require.NoError(t, err)

	total := make([]float64, len(tSeries))
	for _, f := range feat.Labels().Labels() {
		data, _ := feat.Get(f)
		for i, v := range data {
			total[i] += v
		}
	}
	// christmas on the 25th
	assert.Equal(t, 1.0, total[5])
	assert.Equal(t, 0.0, total[4])
}

func TestEventMaskWindow(t *testing.T) {
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	tSeries := dailyT(start, 7)
	ev := NewEvent("lockdown", start.AddDate(0, 0, 1), start.AddDate(0, 0, 6))

	rect := EventOptions{Events: []Event{ev}}.GenerateFeatures(tSeries, "")
	data, _ := rect.Get(feature.NewEvent("lockdown"))
	assert.Equal(t, []float64{0, 1, 1, 1, 1, 1, 0}, data)

	hann := EventOptions{Events: []Event{ev}}.GenerateFeatures(tSeries, WindowHann)
	data, _ = hann.Get(feature.NewEvent("lockdown"))
	assert.InDelta(t, 1.0, data[3], 1e-9)
	assert.Less(t, data[1], data[2])

	invalid := EventOptions{Events: []Event{{Name: "x"}}}.GenerateFeatures(tSeries, "")
	assert.Equal(t, 0, invalid.Len())
}

func TestRegressorFeatures(t *testing.T) {
	r := RegressorOptions{Regressors: []Regressor{NewRegressor("pluie")}}
	r.Standardize(map[string][]float64{"pluie": {1, 3, math.NaN()}})
	assert.InDelta(t, 2.0, r.Regressors[0].Mean, 1e-12)
	assert.InDelta(t, math.Sqrt2, r.Regressors[0].Std, 1e-12)

	feat, err := r.GenerateFeatures(map[string][]float64{"pluie": {2, math.NaN()}}, 2)
	require.NoError(t, err)
	data, _ := feat.Get(feature.NewRegressor("pluie"))
	assert.Equal(t, []float64{0, 0}, data)

	_, err = r.GenerateFeatures(map[string][]float64{"pluie": {1}}, 2)
	assert.ErrorIs(t, err, ErrRegressorLenMismatch)
}

func TestOptionsTablePrint(t *testing.T) {
	opt := NewDefaultOptions()
	opt.RegressorOptions.Regressors = []Regressor{NewRegressor("trafic")}

	var buf bytes.Buffer
	require.NoError(t, opt.TablePrint(&buf, "", "  ", 0))
	out := buf.String()
	assert.Contains(t, out, "Growth: linear")
	assert.Contains(t, out, "Seasonality:")
	assert.Contains(t, out, "Changepoints: None")
	assert.Contains(t, out, "Holidays: fr")
	assert.Contains(t, out, "trafic")
}

func TestCheckNames(t *testing.T) {
	testData := map[string]struct {
		seasonality []SeasonalityConfig
		regressors  []string
		err         error
	}{
		"defaults with regressors": {
			seasonality: NewDefaultSeasonalityOptions().SeasonalityConfigs,
			regressors:  []string{"temperature", "trafic"},
		},
		"regressor named holidays": {
			regressors: []string{"holidays"},
			err:        ErrNameCollision,
		},
		"regressor named yhat": {
			regressors: []string{"yhat"},
			err:        ErrNameCollision,
		},
		"seasonality named trend": {
			seasonality: []SeasonalityConfig{{Name: "trend", Orders: 2, Period: 7 * timedataset.Day}},
			err:         ErrNameCollision,
		},
		"regressor shadowing seasonality": {
			seasonality: NewDefaultSeasonalityOptions().SeasonalityConfigs,
			regressors:  []string{"weekly"},
			err:         ErrNameCollision,
		},
		"repeated regressor": {
			regressors: []string{"trafic", "trafic"},
			err:        ErrNameCollision,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt := &Options{SeasonalityOptions: SeasonalityOptions{SeasonalityConfigs: td.seasonality}}
			for _, reg := range td.regressors {
				opt.RegressorOptions.Regressors = append(opt.RegressorOptions.Regressors, NewRegressor(reg))
			}
			err := opt.CheckNames()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
