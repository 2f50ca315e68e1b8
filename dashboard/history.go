package dashboard

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/accidentcast/forecaster"
	"github.com/accidentcast/forecaster/series"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
)

// RollingWindow is the number of days averaged by the moving mean of the history page
const RollingWindow = 30

// RollingMean averages each value with the window-1 values before it. The first window-1 points
// and every window holding a NaN are NaN.
func RollingMean(y []float64, window int) []float64 {
	res := make([]float64, len(y))
	for i := range res {
		if window < 1 || i+1 < window {
			res[i] = math.NaN()
			continue
		}
		res[i] = floats.Sum(y[i+1-window:i+1]) / float64(window)
	}
	return res
}

// RenderHistory writes the observed counts of key between from and to with their moving mean.
// Zero bounds default to the recorded span and bounds outside it are clamped.
func (d *Dashboard) RenderHistory(w io.Writer, key string, from, to time.Time) error {
	k := series.Key(key)
	if !d.hist.Has(k) {
		return fmt.Errorf("no counts for %q, %w", key, series.ErrUnknownSeries)
	}
	first, last, err := d.hist.Span()
	if err != nil {
		return err
	}
	if from.IsZero() || from.Before(first) {
		from = first
	}
	if to.IsZero() || to.After(last) {
		to = last
	}
	days, counts, err := d.hist.Series(k, from, to)
	if err != nil {
		return err
	}

	line := forecaster.LineTSeries(
		fmt.Sprintf("Nombre d'usagers accidentés du %s au %s", from.Format(dayLayout), to.Format(dayLayout)),
		[]string{"Nb d'accidents par jour", "Moyenne Mobile 30 jours"},
		days,
		[][]float64{counts, RollingMean(counts, RollingWindow)},
	)
	line.SetGlobalOptions(charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}))

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Historique %s", key)
	page.AddCharts(line, weekdayCountsChart(days, counts))
	return page.Render(w)
}

// WriteHistoryCSV exports the recorded counts, see history.Table.WriteCSV
func (d *Dashboard) WriteHistoryCSV(w io.Writer, keys []series.Key, from, to time.Time) error {
	return d.hist.WriteCSV(w, keys, from, to)
}

// weekdayCountsChart averages the recorded counts by day of week, Monday first
func weekdayCountsChart(days []time.Time, counts []float64) *charts.Bar {
	var sum, count [7]float64
	for i, d := range days {
		if math.IsNaN(counts[i]) {
			continue
		}
		idx := (int(d.Weekday()) + 6) % 7
		sum[idx] += counts[i]
		count[idx]++
	}
	data := make([]opts.BarData, 7)
	for i := range data {
		avg := 0.0
		if count[i] > 0 {
			avg = math.Round(sum[i] / count[i])
		}
		data[i] = opts.BarData{Value: avg}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Moyenne par jour de la semaine"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	bar.SetXAxis(weekdays)
	bar.AddSeries("Moyenne", data)
	return bar
}
