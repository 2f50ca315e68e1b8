// Package regressor loads the external regressor tables stored next to each series and aligns
// them onto forecast frames.
package regressor

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/accidentcast/forecaster/internal/csvtable"
	"github.com/accidentcast/forecaster/series"
	"github.com/accidentcast/forecaster/timedataset"
)

// DateColumn is the date header of a regressor file
const DateColumn = "ds"

// Store reads regressor tables from a directory. Nothing is cached, every Load reads the file.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the file backing the regressors of a series
func (s *Store) Path(key series.Key) string {
	return filepath.Join(s.dir, key.String()+"_regressors.csv")
}

// Load reads the regressor table of a series
func (s *Store) Load(key series.Key) (*Table, error) {
	path := s.Path(key)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no regressors for %q at %s, %w", key, path, series.ErrUnknownSeries)
		}
		return nil, err
	}
	defer file.Close()

	tbl, err := csvtable.Read(file, DateColumn)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s, %w", path, err)
	}
	return &Table{tbl: tbl}, nil
}

// Table is an ordered set of dates with one numeric column per regressor
type Table struct {
	tbl *csvtable.Table
}

// NewTable builds a table from aligned dates and columns. Dates are normalized to UTC
// midnight.
func NewTable(dates []time.Time, columns map[string][]float64, order []string) (*Table, error) {
	tbl := &csvtable.Table{
		Dates:   make([]time.Time, len(dates)),
		Columns: order,
		Values:  make(map[string][]float64, len(columns)),
	}
	for i, d := range dates {
		tbl.Dates[i] = timedataset.Midnight(d)
	}
	for _, name := range order {
		vals, exists := columns[name]
		if !exists || len(vals) != len(dates) {
			return nil, fmt.Errorf("column %q does not match %d dates, %w", name, len(dates), series.ErrDataFormat)
		}
		tbl.Values[name] = vals
	}
	return &Table{tbl: tbl}, nil
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.tbl.Dates)
}

// Dates returns the dates of the table in file order
func (t *Table) Dates() []time.Time {
	res := make([]time.Time, len(t.tbl.Dates))
	copy(res, t.tbl.Dates)
	return res
}

// Columns returns the regressor names in file order
func (t *Table) Columns() []string {
	res := make([]string, len(t.tbl.Columns))
	copy(res, t.tbl.Columns)
	return res
}

// Join left-joins the table onto dates. Each returned column is aligned with dates and holds
// NaN wherever the table has no row for the date. Values are never transformed.
func (t *Table) Join(dates []time.Time) map[string][]float64 {
	idx := t.tbl.Index()
	res := make(map[string][]float64, len(t.tbl.Columns))
	for _, col := range t.tbl.Columns {
		src := t.tbl.Values[col]
		dst := make([]float64, len(dates))
		for i, d := range dates {
			row, exists := idx[timedataset.Midnight(d)]
			if !exists {
				dst[i] = math.NaN()
				continue
			}
			dst[i] = src[row]
		}
		res[col] = dst
	}
	return res
}

// Missing returns the dates whose value is NaN in any of the given columns
func Missing(dates []time.Time, columns map[string][]float64, names []string) []time.Time {
	var res []time.Time
	for i, d := range dates {
		for _, name := range names {
			vals, exists := columns[name]
			if !exists || math.IsNaN(vals[i]) {
				res = append(res, d)
				break
			}
		}
	}
	return res
}
