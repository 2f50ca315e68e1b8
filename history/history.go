// Package history reads the observed daily accident counts used as actuals by the dashboard.
package history

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"time"

	"github.com/accidentcast/forecaster/internal/csvtable"
	"github.com/accidentcast/forecaster/series"
	"github.com/accidentcast/forecaster/timedataset"
)

// Table holds one count column per series, keyed by day
type Table struct {
	tbl *csvtable.Table
	idx map[time.Time]int
}

// Load reads the daily counts CSV. The date column is either date or ds.
func Load(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no history at %s, %w", path, series.ErrUnknownSeries)
		}
		return nil, err
	}
	defer file.Close()

	tbl, err := csvtable.Read(file, "date", "ds")
	if err != nil {
		return nil, fmt.Errorf("unable to read %s, %w", path, err)
	}
	return &Table{tbl: tbl, idx: tbl.Index()}, nil
}

// Columns lists the series with recorded counts
func (t *Table) Columns() []string {
	res := make([]string, len(t.tbl.Columns))
	copy(res, t.tbl.Columns)
	return res
}

// Has reports whether counts are recorded for the series
func (t *Table) Has(key series.Key) bool {
	_, exists := t.tbl.Values[key.String()]
	return exists
}

// Series returns the counts of every day from through to inclusive. Days without a row are NaN.
func (t *Table) Series(key series.Key, from, to time.Time) ([]time.Time, []float64, error) {
	vals, exists := t.tbl.Values[key.String()]
	if !exists {
		return nil, nil, fmt.Errorf("no counts for %q, %w", key, series.ErrUnknownSeries)
	}
	days, err := timedataset.DailyRange(from, to)
	if err != nil {
		return nil, nil, err
	}
	res := make([]float64, len(days))
	for i, d := range days {
		row, exists := t.idx[d]
		if !exists {
			res[i] = math.NaN()
			continue
		}
		res[i] = vals[row]
	}
	return days, res, nil
}

// Sum adds the counts of every recorded day from through to inclusive
func (t *Table) Sum(key series.Key, from, to time.Time) (float64, error) {
	_, vals, err := t.Series(key, from, to)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, v := range vals {
		if !math.IsNaN(v) {
			sum += v
		}
	}
	return sum, nil
}

// Span returns the first and last recorded days
func (t *Table) Span() (time.Time, time.Time, error) {
	if len(t.tbl.Dates) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("empty history, %w", series.ErrDataFormat)
	}
	first, last := t.tbl.Dates[0], t.tbl.Dates[0]
	for _, d := range t.tbl.Dates[1:] {
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	return first, last, nil
}

// WriteCSV exports the rows recorded from through to inclusive, restricted to keys. A zero bound
// leaves that side open and no keys keeps every column.
func (t *Table) WriteCSV(w io.Writer, keys []series.Key, from, to time.Time) error {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return fmt.Errorf("%s before %s, %w", to.Format(time.DateOnly), from.Format(time.DateOnly), timedataset.ErrInvalidRange)
	}
	cols := t.tbl.Columns
	if len(keys) > 0 {
		cols = make([]string, 0, len(keys))
		for _, key := range keys {
			if !t.Has(key) {
				return fmt.Errorf("no counts for %q, %w", key, series.ErrUnknownSeries)
			}
			cols = append(cols, key.String())
		}
	}

	out := &csvtable.Table{Columns: cols, Values: make(map[string][]float64, len(cols))}
	for row, d := range t.tbl.Dates {
		if (!from.IsZero() && d.Before(from)) || (!to.IsZero() && d.After(to)) {
			continue
		}
		out.Dates = append(out.Dates, d)
		for _, col := range cols {
			out.Values[col] = append(out.Values[col], t.tbl.Values[col][row])
		}
	}
	return out.Write(w, "date")
}
