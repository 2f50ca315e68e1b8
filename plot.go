package forecaster

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrNoTrainingData = errors.New("forecaster has no training data")

// DateAxis formats each time point as a calendar date
func DateAxis(t []time.Time) []string {
	axis := make([]string, len(t))
	for i, tPnt := range t {
		axis[i] = tPnt.Format(time.DateOnly)
	}
	return axis
}

// LineData converts a series into echart points. NaNs become empty points so the line breaks
// instead of shifting.
func LineData(y []float64) []opts.LineData {
	data := make([]opts.LineData, len(y))
	for i, v := range y {
		if math.IsNaN(v) {
			data[i] = opts.LineData{Value: "-"}
			continue
		}
		data[i] = opts.LineData{Value: v}
	}
	return data
}

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. The
// input y is a slice of series that must have the same length as the input time slice.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)
	line.SetXAxis(DateAxis(t))
	for i, name := range seriesName {
		line.AddSeries(name, LineData(y[i]))
	}
	return line
}

// LineForecaster generates an echart line chart of the actual values along with the forecast
// and its bounds. actual may be shorter than the result, the remaining points are left empty.
func LineForecaster(title string, actual []float64, res *Results) *charts.Line {
	padded := make([]float64, len(res.T))
	for i := range padded {
		padded[i] = math.NaN()
		if i < len(actual) {
			padded[i] = actual[i]
		}
	}
	return LineTSeries(
		title,
		[]string{"Actual", "Forecast", "Upper", "Lower"},
		res.T,
		[][]float64{padded, res.Forecast, res.Upper, res.Lower},
	)
}

// PlotFit renders an html page with the fit extended by horizon days, the trend and the
// residual of the training data.
func (f *Forecaster) PlotFit(w io.Writer, horizon int) error {
	td := f.TrainingData()
	if td == nil || td.Len() == 0 {
		return ErrNoTrainingData
	}
	t, err := f.MakeFutureFrame(horizon)
	if err != nil {
		return err
	}
	res, err := f.Predict(t, nil)
	if err != nil {
		return fmt.Errorf("unable to predict with horizon, %w", err)
	}

	actual := make([]float64, len(t))
	residual := make([]float64, len(t))
	for i := range t {
		actual[i] = math.NaN()
		residual[i] = math.NaN()
	}
	for i, tPnt := range td.T {
		idx := int(tPnt.Sub(t[0]) / (24 * time.Hour))
		if idx < 0 || idx >= len(t) {
			continue
		}
		actual[idx] = td.Y[i]
		if i < len(f.residual) {
			residual[idx] = f.residual[i]
		}
	}

	page := components.NewPage()
	page.AddCharts(
		LineForecaster("Forecast Fit", actual, res),
		LineTSeries("Forecast Trend", []string{"Trend"}, t, [][]float64{res.Components.Trend}),
		LineTSeries("Forecast Residual", []string{"Residual"}, t, [][]float64{residual}),
	)
	return page.Render(w)
}
