package service

import (
	"sort"
	"time"

	"github.com/accidentcast/forecaster"
	"github.com/accidentcast/forecaster/forecast"
	"github.com/accidentcast/forecaster/series"
	"github.com/goccy/go-json"
)

// DateLayout is the serialized layout of record dates
const DateLayout = "2006-01-02T15:04:05"

// Record is the forecast of a single day with its additive decomposition
type Record struct {
	Date            time.Time
	Yhat            float64
	YhatLower       float64
	YhatUpper       float64
	Trend           float64
	Seasonality     map[string]float64
	Holidays        float64
	ExtraRegressors float64
	Regressors      map[string]float64
	AdditiveTerms   float64
}

// MarshalJSON flattens the record into one attribute per column, seasonalities and
// regressor effects named after themselves.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 8+len(r.Seasonality)+len(r.Regressors))
	for name, v := range r.Seasonality {
		m[name] = v
	}
	for name, v := range r.Regressors {
		m[name] = v
	}
	m["ds"] = r.Date.Format(DateLayout)
	m["yhat"] = r.Yhat
	m["yhat_lower"] = r.YhatLower
	m["yhat_upper"] = r.YhatUpper
	m[forecast.ComponentTrend] = r.Trend
	m[forecast.ComponentHolidays] = r.Holidays
	m[forecast.ComponentExtraRegressors] = r.ExtraRegressors
	m[forecast.ComponentAdditiveTerms] = r.AdditiveTerms
	return json.Marshal(m)
}

// Forecast is the result of a forecast request, one record per frame day in date order
type Forecast struct {
	Key         series.Key
	History     forecaster.History
	Seasonality []string
	Regressors  []string
	Records     []Record
}

func newForecast(key series.Key, hist forecaster.History, res *forecaster.Results) *Forecast {
	comp := res.Components
	extra := comp.ExtraRegressors()
	additive := comp.AdditiveTerms()

	fc := &Forecast{
		Key:         key,
		History:     hist,
		Seasonality: comp.SeasonalityNames(),
		Regressors:  comp.RegressorNames(),
		Records:     make([]Record, len(res.T)),
	}
	for i, t := range res.T {
		rec := Record{
			Date:            t,
			Yhat:            res.Forecast[i],
			YhatLower:       res.Lower[i],
			YhatUpper:       res.Upper[i],
			Trend:           comp.Trend[i],
			Seasonality:     make(map[string]float64, len(comp.Seasonality)),
			Holidays:        comp.Holidays[i],
			ExtraRegressors: extra[i],
			Regressors:      make(map[string]float64, len(comp.Regressors)),
			AdditiveTerms:   additive[i],
		}
		for name, vals := range comp.Seasonality {
			rec.Seasonality[name] = vals[i]
		}
		for name, vals := range comp.Regressors {
			rec.Regressors[name] = vals[i]
		}
		fc.Records[i] = rec
	}
	sort.SliceStable(fc.Records, func(i, j int) bool {
		return fc.Records[i].Date.Before(fc.Records[j].Date)
	})
	return fc
}

// Window returns the records dated from through to inclusive
func (f *Forecast) Window(from, to time.Time) []Record {
	var res []Record
	for _, rec := range f.Records {
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		res = append(res, rec)
	}
	return res
}

// Future returns the records after the last history day
func (f *Forecast) Future() []Record {
	var res []Record
	for _, rec := range f.Records {
		if rec.Date.After(f.History.End) {
			res = append(res, rec)
		}
	}
	return res
}

// Contribution is the sum of each component over a window
type Contribution struct {
	Trend           float64
	Seasonality     map[string]float64
	Holidays        float64
	ExtraRegressors float64
	Total           float64
}

// Contributions sums every component over the records dated from through to inclusive.
// Total equals the sum of the point estimates.
func (f *Forecast) Contributions(from, to time.Time) Contribution {
	c := Contribution{Seasonality: make(map[string]float64, len(f.Seasonality))}
	for _, name := range f.Seasonality {
		c.Seasonality[name] = 0
	}
	for _, rec := range f.Window(from, to) {
		c.Trend += rec.Trend
		c.Holidays += rec.Holidays
		c.ExtraRegressors += rec.ExtraRegressors
		c.Total += rec.Yhat
		for name, v := range rec.Seasonality {
			c.Seasonality[name] += v
		}
	}
	return c
}
