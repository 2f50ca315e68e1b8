package dashboard

import (
	"math"
	"time"

	"github.com/accidentcast/forecaster/history"
	"github.com/accidentcast/forecaster/series"
	"github.com/accidentcast/forecaster/service"
)

// PastYears is the number of observed years compared against the forecast window
const PastYears = 3

// Period is the total of a series over a calendar window
type Period struct {
	From time.Time
	To   time.Time
	Sum  float64
	// Evolution is the relative change against the previous period, NaN for the first one
	Evolution float64
	Forecast  bool
}

// Metrics compares the forecast window with the same window in the preceding years
type Metrics struct {
	// Periods holds the observed years, oldest first, followed by the forecast window
	Periods []Period
	// VsOldest is the relative change of the forecast against the oldest observed year
	VsOldest float64
}

// Forecast returns the forecast period
func (m Metrics) Forecast() Period {
	return m.Periods[len(m.Periods)-1]
}

// PeriodMetrics sums the forecast over the days after the history and the actual counts over
// the same calendar window of each of the PastYears preceding years.
func PeriodMetrics(fc *service.Forecast, hist *history.Table, key series.Key, days int) (Metrics, error) {
	from := fc.History.End.AddDate(0, 0, 1)
	to := from.AddDate(0, 0, days-1)

	var m Metrics
	for y := PastYears; y >= 1; y-- {
		pFrom, pTo := from.AddDate(-y, 0, 0), to.AddDate(-y, 0, 0)
		sum, err := hist.Sum(key, pFrom, pTo)
		if err != nil {
			return Metrics{}, err
		}
		m.Periods = append(m.Periods, Period{From: pFrom, To: pTo, Sum: sum})
	}

	var total float64
	for _, rec := range fc.Window(from, to) {
		total += rec.Yhat
	}
	m.Periods = append(m.Periods, Period{From: from, To: to, Sum: total, Forecast: true})

	m.Periods[0].Evolution = math.NaN()
	for i := 1; i < len(m.Periods); i++ {
		m.Periods[i].Evolution = evolution(m.Periods[i-1].Sum, m.Periods[i].Sum)
	}
	m.VsOldest = evolution(m.Periods[0].Sum, total)
	return m, nil
}

func evolution(prev, cur float64) float64 {
	if prev == 0 {
		return math.NaN()
	}
	return (cur - prev) / prev
}
