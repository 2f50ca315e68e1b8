// Package csvtable reads and writes the daily CSV exports: one date column followed by numeric
// columns.
package csvtable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/accidentcast/forecaster/series"
	"github.com/accidentcast/forecaster/timedataset"
)

var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
}

// indexColumns are unnamed index columns left by dataframe exports
var indexColumns = map[string]struct{}{
	"":           {},
	"Unnamed: 0": {},
}

// Table is a parsed CSV with one row per date
type Table struct {
	Dates   []time.Time
	Columns []string
	Values  map[string][]float64
}

// ParseDate accepts the date layouts found in the exports and normalizes to UTC midnight
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return timedataset.Midnight(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q, %w", raw, series.ErrDataFormat)
}

// Read parses a CSV whose date column is the first header found in dateColumns. Empty numeric
// cells are NaN. Duplicate dates are rejected.
func Read(r io.Reader, dateColumns ...string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file, %w", series.ErrDataFormat)
		}
		return nil, fmt.Errorf("%s, %w", err.Error(), series.ErrDataFormat)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	dateIdx := -1
	for _, name := range dateColumns {
		for i, col := range header {
			if strings.TrimSpace(col) == name {
				dateIdx = i
				break
			}
		}
		if dateIdx >= 0 {
			break
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("no date column among %v, %w", dateColumns, series.ErrDataFormat)
	}

	tbl := &Table{Values: make(map[string][]float64)}
	colIdx := make([]int, 0, len(header))
	for i, col := range header {
		col = strings.TrimSpace(col)
		if i == dateIdx {
			continue
		}
		if _, skip := indexColumns[col]; skip {
			continue
		}
		if _, dup := tbl.Values[col]; dup {
			return nil, fmt.Errorf("column %q repeated in header, %w", col, series.ErrDataFormat)
		}
		colIdx = append(colIdx, i)
		tbl.Columns = append(tbl.Columns, col)
		tbl.Values[col] = nil
	}

	seen := make(map[time.Time]struct{})
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d, %s, %w", line, err.Error(), series.ErrDataFormat)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) <= dateIdx {
			return nil, fmt.Errorf("line %d has no date, %w", line, series.ErrDataFormat)
		}

		date, err := ParseDate(record[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d, %w", line, err)
		}
		if _, dup := seen[date]; dup {
			return nil, fmt.Errorf("line %d duplicates %s, %w", line, date.Format(time.DateOnly), series.ErrDataFormat)
		}
		seen[date] = struct{}{}
		tbl.Dates = append(tbl.Dates, date)

		for j, i := range colIdx {
			col := tbl.Columns[j]
			v := math.NaN()
			if i < len(record) {
				if raw := strings.TrimSpace(record[i]); raw != "" && !strings.EqualFold(raw, "nan") {
					v, err = strconv.ParseFloat(raw, 64)
					if err != nil {
						return nil, fmt.Errorf("line %d column %q value %q, %w", line, col, raw, series.ErrDataFormat)
					}
				}
			}
			tbl.Values[col] = append(tbl.Values[col], v)
		}
	}
	return tbl, nil
}

// Index maps each date to its row
func (t *Table) Index() map[time.Time]int {
	idx := make(map[time.Time]int, len(t.Dates))
	for i, d := range t.Dates {
		idx[d] = i
	}
	return idx
}

// Write emits the table with dateColumn first. NaN values are written as empty cells so the
// output reads back unchanged.
func (t *Table) Write(w io.Writer, dateColumn string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(append([]string{dateColumn}, t.Columns...)); err != nil {
		return err
	}
	row := make([]string, len(t.Columns)+1)
	for i, d := range t.Dates {
		row[0] = d.Format(time.DateOnly)
		for j, col := range t.Columns {
			row[j+1] = ""
			if v := t.Values[col][i]; !math.IsNaN(v) {
				row[j+1] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
