package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/accidentcast/forecaster/feature"
	"github.com/accidentcast/forecaster/forecast/options"
	"github.com/accidentcast/forecaster/timedataset"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weekSec = 7 * 86400.0

var trainStart = time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

func weeklyOptions() *options.Options {
	return &options.Options{
		GrowthType: feature.GrowthLinear,
		SeasonalityOptions: options.SeasonalityOptions{
			SeasonalityConfigs: []options.SeasonalityConfig{options.NewWeeklySeasonalityConfig(3)},
		},
	}
}

// generateSeries builds a series that is exactly representable by weeklyOptions
func generateSeries(n int) ([]time.Time, []float64) {
	t := timedataset.GenerateDaily(trainStart, n)
	y := timedataset.GenerateConstY(n, 50.0)
	y.Add(timedataset.GenerateChange(t, t[0], 0, 0.02)).
		Add(timedataset.GenerateWaveY(t, 3.0, weekSec, 1.0, 0))
	return t, y
}

func TestForecastFit(t *testing.T) {
	n := 365
	tSeries, y := generateSeries(n)

	f, err := New(weeklyOptions())
	require.NoError(t, err)
	require.NoError(t, f.Fit(tSeries, y, nil))

	coef, err := f.Coefficients()
	require.NoError(t, err)

	expected := map[string]float64{
		"growth_intercept":  50.0,
		"growth_linear":     0.02 * float64(n-1),
		"seas_weekly_1_sin": 3.0,
		"seas_weekly_1_cos": 0.0,
		"seas_weekly_2_sin": 0.0,
	}
	for label, val := range expected {
		assert.InDelta(t, val, coef[label], 1e-6, label)
	}

	scores := f.Scores()
	assert.InDelta(t, 1.0, scores.R2, 1e-9)
	assert.InDelta(t, 0.0, scores.MSE, 1e-9)

	res := f.Residuals()
	require.Len(t, res, n)
	for _, r := range res {
		assert.InDelta(t, 0.0, r, 1e-6)
	}

	eq, err := f.ModelEq()
	require.NoError(t, err)
	assert.Contains(t, eq, "3.00*seas_weekly_1_sin")
	assert.Equal(t, trainStart, f.TrainStartTime())
	assert.Equal(t, tSeries[n-1], f.TrainEndTime())
}

func TestForecastFitWithNaN(t *testing.T) {
	tSeries, y := generateSeries(60)
	y[0] = math.NaN()
	y[30] = math.NaN()

	f, err := New(weeklyOptions())
	require.NoError(t, err)
	require.NoError(t, f.Fit(tSeries, y, nil))

	assert.Equal(t, tSeries[1], f.TrainStartTime())
	res := f.Residuals()
	assert.True(t, math.IsNaN(res[30]))
}

func TestForecastErrors(t *testing.T) {
	f, err := New(nil)
	require.NoError(t, err)

	_, err = f.Predict([]time.Time{trainStart}, nil)
	assert.ErrorIs(t, err, ErrUntrainedForecast)

	_, err = f.Model()
	assert.ErrorIs(t, err, ErrUntrainedForecast)

	err = f.Fit([]time.Time{trainStart, trainStart.Add(timedataset.Day)}, []float64{1, math.NaN()}, nil)
	assert.ErrorIs(t, err, ErrInsufficientTrainingData)

	var nilF *Forecast
	_, err = nilF.PredictComponents(nil, nil)
	assert.ErrorIs(t, err, ErrUninitializedForecast)

	_, err = NewFromModel(Model{})
	assert.ErrorIs(t, err, ErrNoOptions)
}

func TestPredictComponentsSum(t *testing.T) {
	tSeries, y := generateSeries(730)
	opt := options.NewDefaultOptions()
	opt.ChangepointOptions.Changepoints = []options.Changepoint{
		options.NewChangepoint("mid", trainStart.AddDate(1, 0, 0)),
	}

	f, err := New(opt)
	require.NoError(t, err)
	require.NoError(t, f.Fit(tSeries, y, nil))

	future := timedataset.GenerateDaily(trainStart, 730+90)
	comp, err := f.PredictComponents(future, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{options.LabelSeasWeekly, options.LabelSeasYearly}, comp.SeasonalityNames())
	additive := comp.AdditiveTerms()
	total := comp.Total()
	for i := range future {
		assert.InDelta(t, comp.Trend[i]+additive[i], total[i], 1e-9)
	}

	// extending the frame leaves the historical rows unchanged
	hist, err := f.Predict(tSeries, nil)
	require.NoError(t, err)
	assert.InDeltaSlice(t, hist, total[:len(hist)], 1e-9)
}

func TestForecastRegressor(t *testing.T) {
	n := 200
	tSeries := timedataset.GenerateDaily(trainStart, n)
	trafic := timedataset.GenerateNoise(n, 5.0, 42)
	y := make([]float64, n)
	for i := range y {
		y[i] = 10 + 2*trafic[i]
	}

	opt := &options.Options{
		RegressorOptions: options.RegressorOptions{
			Regressors: []options.Regressor{options.NewRegressor("trafic")},
		},
	}
	f, err := New(opt)
	require.NoError(t, err)
	require.NoError(t, f.Fit(tSeries, y, map[string][]float64{"trafic": trafic}))

	pred, err := f.Predict(tSeries[:3], map[string][]float64{"trafic": trafic[:3]})
	require.NoError(t, err)
	assert.InDeltaSlice(t, y[:3], pred, 1e-6)

	comp, err := f.PredictComponents(tSeries[:2], map[string][]float64{"trafic": {math.NaN(), trafic[1]}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, comp.Regressors["trafic"][0])
	assert.NotEqual(t, 0.0, comp.Regressors["trafic"][1])
	assert.Equal(t, comp.Regressors["trafic"], comp.ExtraRegressors())

	// absent regressor contributes nothing
	comp, err = f.PredictComponents(tSeries[:2], nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, comp.Regressors["trafic"])
}

func TestModelRoundTrip(t *testing.T) {
	tSeries, y := generateSeries(400)
	opt := options.NewDefaultOptions()
	opt.EventOptions.Events = []options.Event{
		options.NewEvent("confinement", trainStart.AddDate(0, 2, 0), trainStart.AddDate(0, 3, 0)),
	}

	f, err := New(opt)
	require.NoError(t, err)
	require.NoError(t, f.Fit(tSeries, y, nil))

	m, err := f.Model()
	require.NoError(t, err)

	out, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Model
	require.NoError(t, json.Unmarshal(out, &decoded))

	loaded, err := NewFromModel(decoded)
	require.NoError(t, err)

	future := timedataset.GenerateDaily(trainStart, 450)
	expected, err := f.Predict(future, nil)
	require.NoError(t, err)
	res, err := loaded.Predict(future, nil)
	require.NoError(t, err)
	assert.InDeltaSlice(t, expected, res, 1e-9)
	assert.Equal(t, f.FeatureLabels(), loaded.FeatureLabels())
}
