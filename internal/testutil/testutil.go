// Package testutil builds fitted model artifacts, regressor files and history files on
// synthetic daily series for package tests.
package testutil

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/accidentcast/forecaster"
	"github.com/accidentcast/forecaster/forecast/options"
	"github.com/accidentcast/forecaster/series"
	"github.com/accidentcast/forecaster/timedataset"
	"github.com/stretchr/testify/require"
)

// RegressorName is the single extra regressor of every fixture model
const RegressorName = "temperature"

var Start = time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

// Fixture describes the files written for a set of series
type Fixture struct {
	Dir           string
	ModelsDir     string
	RegressorsDir string
	HistoryPath   string

	Keys []series.Key
	// Days is the number of history days of every series
	Days int
	// RegressorDays is how many days past the history the regressor files cover
	RegressorDays int
}

// HistoryEnd is the last day of history
func (f Fixture) HistoryEnd() time.Time {
	return Start.AddDate(0, 0, f.Days-1)
}

// ModelPath returns the artifact written for a series
func (f Fixture) ModelPath(key series.Key) string {
	return filepath.Join(f.ModelsDir, ModelFile(key))
}

// ModelFile returns the artifact name of a series
func ModelFile(key series.Key) string {
	return series.DefaultModelFile(key)
}

// Temperature returns the synthetic regressor for the days t
func Temperature(t []time.Time) []float64 {
	y := timedataset.GenerateConstY(len(t), 12.0)
	y.Add(timedataset.GenerateWaveY(t, 8.0, 365.25*86400.0, 1.0, 0))
	return y
}

// Counts returns a synthetic daily count series with weekly and yearly cycles and an effect
// of the temperature regressor. The seed changes the level and the noise.
func Counts(t []time.Time, seed uint64) []float64 {
	level := 50.0 + 10.0*float64(seed)
	y := timedataset.GenerateConstY(len(t), level)
	y.Add(timedataset.GenerateWaveY(t, level/10, 7*86400.0, 1.0, 0)).
		Add(timedataset.GenerateNoise(len(t), 2.0, seed))
	temp := Temperature(t)
	for i := range y {
		y[i] += 1.5 * temp[i]
	}
	return y
}

// FitOptions returns light options with the temperature regressor
func FitOptions() *forecaster.Options {
	opt := forecaster.NewDefaultOptions()
	opt.SeriesOptions.SeasonalityOptions.SeasonalityConfigs = []options.SeasonalityConfig{
		options.NewWeeklySeasonalityConfig(3),
		options.NewYearlySeasonalityConfig(4),
	}
	opt.SeriesOptions.ChangepointOptions.Auto = true
	opt.SeriesOptions.ChangepointOptions.AutoNumChangepoints = 5
	opt.SeriesOptions.RegressorOptions = options.RegressorOptions{
		Regressors: []options.Regressor{options.NewRegressor(RegressorName)},
	}
	return opt
}

// Fit fits a forecaster on days of synthetic counts
func Fit(t *testing.T, days int, seed uint64) *forecaster.Forecaster {
	t.Helper()
	tSeries := timedataset.GenerateDaily(Start, days)
	y := Counts(tSeries, seed)
	f, err := forecaster.New(FitOptions())
	require.NoError(t, err)
	require.NoError(t, f.Fit(tSeries, y, map[string][]float64{RegressorName: Temperature(tSeries)}))
	return f
}

// Write fits and writes one model, one regressor file per key and a shared history file
// under t.TempDir().
func Write(t *testing.T, keys []series.Key, days, regressorDays int) Fixture {
	t.Helper()
	dir := t.TempDir()
	fx := Fixture{
		Dir:           dir,
		ModelsDir:     filepath.Join(dir, "models"),
		RegressorsDir: filepath.Join(dir, "regressors"),
		HistoryPath:   filepath.Join(dir, "nbr_acc_jour.csv"),
		Keys:          keys,
		Days:          days,
		RegressorDays: regressorDays,
	}
	require.NoError(t, os.MkdirAll(fx.ModelsDir, 0o755))
	require.NoError(t, os.MkdirAll(fx.RegressorsDir, 0o755))

	hist := timedataset.GenerateDaily(Start, days)
	counts := make([][]float64, len(keys))
	for i, key := range keys {
		f := Fit(t, days, uint64(i+1))
		model, err := f.Model()
		require.NoError(t, err)

		file, err := os.Create(fx.ModelPath(key))
		require.NoError(t, err)
		require.NoError(t, model.Encode(file))
		require.NoError(t, file.Close())

		regDays := timedataset.GenerateDaily(Start, days+regressorDays)
		WriteCSV(t, filepath.Join(fx.RegressorsDir, key.String()+"_regressors.csv"),
			"ds", regDays, []string{RegressorName}, [][]float64{Temperature(regDays)})

		counts[i] = Counts(hist, uint64(i+1))
	}

	cols := make([]string, len(keys))
	for i, key := range keys {
		cols[i] = key.String()
	}
	WriteCSV(t, fx.HistoryPath, "date", hist, cols, counts)
	return fx
}

// WriteCSV writes a date column followed by the named columns. NaN values are left empty.
func WriteCSV(t *testing.T, path, dateColumn string, dates []time.Time, columns []string, values [][]float64) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	w := csv.NewWriter(file)
	require.NoError(t, w.Write(append([]string{dateColumn}, columns...)))
	for i, d := range dates {
		row := make([]string, 0, len(columns)+1)
		row = append(row, d.Format(time.DateOnly))
		for j := range columns {
			v := values[j][i]
			if math.IsNaN(v) {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		require.NoError(t, w.Write(row))
	}
	w.Flush()
	require.NoError(t, w.Error())
}
