package options

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/accidentcast/forecaster/feature"
	"github.com/accidentcast/forecaster/forecast/util"
	"github.com/accidentcast/forecaster/timedataset"
)

var (
	ErrStartAfterEnd = errors.New("event start time is after end time")
	ErrUnsetTime     = errors.New("unset event start or end time")
	ErrNoEventName   = errors.New("no event name")
)

// Event represents a span of days with its own level shift, e.g. a lockdown. Start is
// inclusive and End is exclusive.
type Event struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewEvent(name string, start, end time.Time) Event {
	return Event{
		Name:  name,
		Start: start,
		End:   end,
	}
}

func (e Event) Valid() error {
	if e.Start.IsZero() || e.End.IsZero() {
		return ErrUnsetTime
	}
	if e.Start.After(e.End) {
		return ErrStartAfterEnd
	}
	if e.Name == "" {
		return ErrNoEventName
	}
	return nil
}

// days returns the number of daily steps covered by the event
func (e Event) days() int {
	return int(math.Ceil(e.End.Sub(e.Start).Hours() / 24.0))
}

type EventOptions struct {
	Events []Event `json:"events"`
}

// GenerateFeatures computes one mask feature per event name. Events sharing a name are
// merged into the same feature.
func (e EventOptions) GenerateFeatures(t []time.Time, window string) *feature.Set {
	byName := make(map[string][]Event)
	var names []string
	for _, ev := range e.Events {
		if err := ev.Valid(); err != nil {
			slog.Warn("not separately modelling invalid event", "name", ev.Name, "error", err.Error())
			continue
		}
		name := normalizeName(ev.Name)
		if _, exists := byName[name]; !exists {
			names = append(names, name)
		}
		byName[name] = append(byName[name], ev)
	}

	eFeat := feature.NewSet()
	for _, name := range names {
		eFeat.Set(feature.NewEvent(name), eventMask(t, byName[name], window))
	}
	return eFeat
}

func (e EventOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	noCfg := " None"
	if len(e.Events) > 0 {
		noCfg = ""
	}
	if _, err := fmt.Fprintf(w, "%s%sEvents:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noCfg); err != nil {
		return err
	}
	if len(e.Events) == 0 {
		return nil
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tbl, "%s%sName\tStart\tEnd\t\n", prefix, util.IndentExpand(indent, indentGrowth+1))
	for _, ev := range e.Events {
		fmt.Fprintf(tbl, "%s%s%s\t%s\t%s\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			ev.Name, ev.Start.Format(time.DateOnly), ev.End.Format(time.DateOnly))
	}
	return tbl.Flush()
}

// eventMask evaluates the windowed mask of the spans at every time point. The window is laid
// over the whole span in days, independently of t, so the value at a given day does not depend
// on which other days are requested. Overlapping spans keep the largest weight.
func eventMask(t []time.Time, spans []Event, window string) []float64 {
	winFunc := WindowFunc(window)
	weights := make(map[int][]float64)

	mask := make([]float64, len(t))
	for _, span := range spans {
		n := span.days()
		if n <= 0 {
			continue
		}
		w, exists := weights[n]
		if !exists {
			w = make([]float64, n)
			for i := range w {
				w[i] = 1.0
			}
			w = winFunc(w)
			weights[n] = w
		}

		start := timedataset.Midnight(span.Start)
		for i, tPnt := range t {
			if tPnt.Before(span.Start) || !tPnt.Before(span.End) {
				continue
			}
			pos := int(timedataset.Midnight(tPnt).Sub(start) / timedataset.Day)
			if pos < 0 || pos >= n {
				continue
			}
			mask[i] = math.Max(mask[i], w[pos])
		}
	}
	return mask
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "'", "_", "’", "_", "-", "_").Replace(name)
}
