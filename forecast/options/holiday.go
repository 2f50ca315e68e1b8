package options

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/accidentcast/forecaster/feature"
	"github.com/accidentcast/forecaster/forecast/util"
	"github.com/accidentcast/forecaster/timedataset"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/fr"
)

const CountryFrance = "fr"

var ErrUnknownCountry = errors.New("unknown holiday country")

// HolidayOptions enables one event feature per public holiday of a country. Each holiday
// covers its observed day widened by DaysBefore and DaysAfter, in every year.
type HolidayOptions struct {
	Country    string `json:"country"`
	DaysBefore int    `json:"days_before"`
	DaysAfter  int    `json:"days_after"`
}

func NewDefaultHolidayOptions() HolidayOptions {
	return HolidayOptions{Country: CountryFrance}
}

// Holidays returns the calendar of the configured country, nil when disabled
func (h HolidayOptions) Holidays() ([]*cal.Holiday, error) {
	switch h.Country {
	case "":
		return nil, nil
	case CountryFrance:
		return fr.Holidays, nil
	}
	return nil, fmt.Errorf("%q, %w", h.Country, ErrUnknownCountry)
}

// Events expands every holiday into one event per year from startYear through endYear
func (h HolidayOptions) Events(startYear, endYear int) ([]Event, error) {
	hols, err := h.Holidays()
	if err != nil {
		return nil, err
	}
	before := time.Duration(max(h.DaysBefore, 0)) * timedataset.Day
	after := time.Duration(max(h.DaysAfter, 0)) * timedataset.Day

	var events []Event
	for _, hol := range hols {
		for year := startYear; year <= endYear; year++ {
			_, observed := hol.Calc(year)
			if observed.IsZero() {
				continue
			}
			day := timedataset.Midnight(observed)
			events = append(events, NewEvent(hol.Name, day.Add(-before), day.Add(timedataset.Day+after)))
		}
	}
	return events, nil
}

// GenerateFeatures computes one mask per holiday name across all years touched by t. The
// years either side are included so widened holidays near new year are covered.
func (h HolidayOptions) GenerateFeatures(t []time.Time, window string) (*feature.Set, error) {
	if h.Country == "" || len(t) == 0 {
		return feature.NewSet(), nil
	}
	minYear, maxYear := t[0].Year(), t[0].Year()
	for _, tPnt := range t {
		minYear = min(minYear, tPnt.Year())
		maxYear = max(maxYear, tPnt.Year())
	}
	events, err := h.Events(minYear-1, maxYear+1)
	if err != nil {
		return nil, err
	}
	return EventOptions{Events: events}.GenerateFeatures(t, window), nil
}

func (h HolidayOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	if h.Country == "" {
		_, err := fmt.Fprintf(w, "%s%sHolidays: None\n", prefix, util.IndentExpand(indent, indentGrowth))
		return err
	}
	_, err := fmt.Fprintf(w, "%s%sHolidays: %s, Before: %dd, After: %dd\n",
		prefix, util.IndentExpand(indent, indentGrowth), h.Country, h.DaysBefore, h.DaysAfter)
	return err
}
