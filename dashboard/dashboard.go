// Package dashboard renders the forecast page of a series: period metrics, the forecast
// overview, the seasonal profiles, the regressor and holiday impacts and the contribution of
// each component over the forecast window. It also renders the history page of the recorded
// counts and exports them as CSV.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/accidentcast/forecaster"
	"github.com/accidentcast/forecaster/forecast"
	"github.com/accidentcast/forecaster/forecast/options"
	"github.com/accidentcast/forecaster/history"
	"github.com/accidentcast/forecaster/series"
	"github.com/accidentcast/forecaster/service"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	DefaultDays = 181

	dayLayout = "02-01-2006"

	colorIncrease = "#042244"
	colorDecrease = "#ed3c64"
	colorTotal    = "#66cccc"
)

var weekdays = []string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"}

// Forecaster produces the forecast shown on the page
type Forecaster interface {
	Forecast(ctx context.Context, key string, days int) (*service.Forecast, error)
}

// Models resolves the fitted model of a series for its changepoints
type Models interface {
	Get(key string) (*forecaster.Forecaster, error)
}

type Dashboard struct {
	forecasts Forecaster
	models    Models
	hist      *history.Table
}

func New(forecasts Forecaster, models Models, hist *history.Table) *Dashboard {
	return &Dashboard{forecasts: forecasts, models: models, hist: hist}
}

// Render writes the forecast page of key for the next days days
func (d *Dashboard) Render(ctx context.Context, w io.Writer, key string, days int) error {
	if days < 1 {
		return fmt.Errorf("dashboard needs at least one day, got %d, %w", days, service.ErrInvalidHorizon)
	}
	fc, err := d.forecasts.Forecast(ctx, key, days)
	if err != nil {
		return err
	}
	f, err := d.models.Get(key)
	if err != nil {
		return err
	}
	metrics, err := PeriodMetrics(fc, d.hist, series.Key(key), days)
	if err != nil {
		return err
	}
	window := metrics.Forecast()

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Prévision %s", key)
	page.AddCharts(
		metricsChart(metrics),
		d.overviewChart(fc, series.Key(key), f.Changepoints()),
		weeklyChart(fc),
		yearlyChart(fc),
	)
	for _, name := range fc.Seasonality {
		if name == options.LabelSeasWeekly || name == options.LabelSeasYearly {
			continue
		}
		page.AddCharts(componentChart(fc, name, func(r service.Record) float64 { return r.Seasonality[name] }))
	}
	for _, name := range fc.Regressors {
		page.AddCharts(componentChart(fc, name, func(r service.Record) float64 { return r.Regressors[name] }))
	}
	page.AddCharts(
		componentChart(fc, forecast.ComponentExtraRegressors, func(r service.Record) float64 { return r.ExtraRegressors }),
		componentChart(fc, forecast.ComponentHolidays, func(r service.Record) float64 { return r.Holidays }),
		waterfallChart(fc, window.From, window.To),
	)
	return page.Render(w)
}

func formatEvolution(v float64) string {
	if math.IsNaN(v) {
		return "Non disponible"
	}
	return fmt.Sprintf("%+.1f%%", 100*v)
}

func periodLabel(p Period) string {
	return fmt.Sprintf("Du %s au %s", p.From.Format(dayLayout), p.To.Format(dayLayout))
}

func metricsChart(m Metrics) *charts.Bar {
	labels := make([]string, len(m.Periods))
	data := make([]opts.BarData, len(m.Periods))
	evols := make([]string, len(m.Periods))
	for i, p := range m.Periods {
		labels[i] = periodLabel(p)
		color := colorIncrease
		if p.Forecast {
			color = colorTotal
		}
		data[i] = opts.BarData{Value: math.Round(p.Sum), ItemStyle: &opts.ItemStyle{Color: color}}
		evols[i] = fmt.Sprintf("%d: %s", p.From.Year(), formatEvolution(p.Evolution))
	}
	oldest := m.Periods[0].From.Year()
	subtitle := fmt.Sprintf("%s (%s vs. %d)", strings.Join(evols, "   "), formatEvolution(m.VsOldest), oldest)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Total sur la période", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("Total", data)
	return bar
}

// overviewChart plots the actual counts against the forecast, its bounds and the trend with
// the changepoints marked on it
func (d *Dashboard) overviewChart(fc *service.Forecast, key series.Key, chpts []time.Time) *charts.Line {
	t := recordDates(fc.Records)
	actual := make([]float64, len(t))
	for i := range actual {
		actual[i] = math.NaN()
	}
	if len(t) > 0 && d.hist.Has(key) {
		_, vals, err := d.hist.Series(key, t[0], t[len(t)-1])
		if err == nil {
			copy(actual, vals)
		}
	}

	line := forecaster.LineTSeries(
		fmt.Sprintf("Prévision %s", key),
		[]string{"Réel", "Prévision", "Borne basse", "Borne haute"},
		t,
		[][]float64{
			actual,
			recordValues(fc.Records, func(r service.Record) float64 { return r.Yhat }),
			recordValues(fc.Records, func(r service.Record) float64 { return r.YhatLower }),
			recordValues(fc.Records, func(r service.Record) float64 { return r.YhatUpper }),
		},
	)

	marks := make([]opts.MarkLineNameXAxisItem, len(chpts))
	for i, c := range chpts {
		marks[i] = opts.MarkLineNameXAxisItem{Name: "changepoint", XAxis: c.Format(time.DateOnly)}
	}
	line.AddSeries("Tendance",
		forecaster.LineData(recordValues(fc.Records, func(r service.Record) float64 { return r.Trend })),
		charts.WithMarkLineNameXAxisItemOpts(marks...),
	)
	line.SetGlobalOptions(charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}))
	return line
}

// weeklyChart averages the weekly component by day of week, Monday first
func weeklyChart(fc *service.Forecast) *charts.Bar {
	var sum, count [7]float64
	for _, rec := range fc.Records {
		v, exists := rec.Seasonality[options.LabelSeasWeekly]
		if !exists {
			continue
		}
		idx := (int(rec.Date.Weekday()) + 6) % 7
		sum[idx] += v
		count[idx]++
	}
	data := make([]opts.BarData, 7)
	for i := range data {
		avg := 0.0
		if count[i] > 0 {
			avg = sum[i] / count[i]
		}
		data[i] = opts.BarData{Value: avg}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Saisonnalité hebdomadaire"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	bar.SetXAxis(weekdays)
	bar.AddSeries(options.LabelSeasWeekly, data)
	return bar
}

// yearlyChart averages the yearly component by calendar day
func yearlyChart(fc *service.Forecast) *charts.Line {
	sum := make(map[string]float64)
	count := make(map[string]float64)
	for _, rec := range fc.Records {
		v, exists := rec.Seasonality[options.LabelSeasYearly]
		if !exists {
			continue
		}
		day := rec.Date.Format("01-02")
		sum[day] += v
		count[day]++
	}
	days := make([]string, 0, len(sum))
	for day := range sum {
		days = append(days, day)
	}
	sort.Strings(days)

	axis := make([]string, len(days))
	avg := make([]float64, len(days))
	for i, day := range days {
		axis[i] = day[3:] + "-" + day[:2]
		avg[i] = sum[day] / count[day]
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Saisonnalité annuelle"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	line.SetXAxis(axis)
	line.AddSeries(options.LabelSeasYearly, forecaster.LineData(avg))
	return line
}

func componentChart(fc *service.Forecast, name string, value func(service.Record) float64) *charts.Line {
	title := strings.TrimSuffix(name, "_additive")
	return forecaster.LineTSeries(title, []string{name}, recordDates(fc.Records),
		[][]float64{recordValues(fc.Records, value)})
}

// waterfallChart stacks each component contribution over the window on an invisible base so
// the bars read as a waterfall ending on the forecast total
func waterfallChart(fc *service.Forecast, from, to time.Time) *charts.Bar {
	c := fc.Contributions(from, to)

	labels := []string{forecast.ComponentTrend, forecast.ComponentHolidays}
	values := []float64{c.Trend, c.Holidays}
	for _, name := range fc.Seasonality {
		labels = append(labels, name)
		values = append(values, c.Seasonality[name])
	}
	labels = append(labels, forecast.ComponentExtraRegressors)
	values = append(values, c.ExtraRegressors)

	base := make([]opts.BarData, 0, len(values)+1)
	bars := make([]opts.BarData, 0, len(values)+1)
	var cum float64
	for _, v := range values {
		v = math.Round(v)
		color := colorIncrease
		if v < 0 {
			color = colorDecrease
		}
		base = append(base, opts.BarData{Value: math.Min(cum, cum+v)})
		bars = append(bars, opts.BarData{Value: math.Abs(v), ItemStyle: &opts.ItemStyle{Color: color}})
		cum += v
	}
	labels = append(labels, "Total prévu")
	base = append(base, opts.BarData{Value: 0})
	bars = append(bars, opts.BarData{Value: math.Round(c.Total), ItemStyle: &opts.ItemStyle{Color: colorTotal}})

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Contributions",
			Subtitle: fmt.Sprintf("Du %s au %s", from.Format(dayLayout), to.Format(dayLayout)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("base", base,
		charts.WithBarChartOpts(opts.BarChart{Stack: "total"}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "transparent"}),
	)
	bar.AddSeries("Contribution", bars, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
	return bar
}

func recordDates(recs []service.Record) []time.Time {
	res := make([]time.Time, len(recs))
	for i, r := range recs {
		res[i] = r.Date
	}
	return res
}

func recordValues(recs []service.Record, value func(service.Record) float64) []float64 {
	res := make([]float64, len(recs))
	for i, r := range recs {
		res[i] = value(r)
	}
	return res
}
