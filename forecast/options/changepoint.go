package options

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/accidentcast/forecaster/feature"
	"github.com/accidentcast/forecaster/forecast/util"
)

var (
	DefaultAutoNumChangepoints = 25
	DefaultAutoRange           = 0.8
)

// Changepoint describes a point in time that will change the ongoing trend. This will
// include a bias and, when growth is enabled, a slope feature.
type Changepoint struct {
	T    time.Time `json:"time"`
	Name string    `json:"name"`
}

func NewChangepoint(name string, t time.Time) Changepoint {
	return Changepoint{t, name}
}

// ChangepointOptions configures the changepoint fit to either use auto-detection by evenly
// placing N changepoints over the first AutoRange fraction of the training window, or a
// list of known changepoints such as the start of a lockdown.
type ChangepointOptions struct {
	Changepoints        []Changepoint `json:"changepoints"`
	EnableGrowth        bool          `json:"enable_growth"`
	Auto                bool          `json:"auto"`
	AutoNumChangepoints int           `json:"auto_num_changepoints"`
	AutoRange           float64       `json:"auto_range"`
}

// NewDefaultChangepointOptions generates a set of default changepoint options
func NewDefaultChangepointOptions() ChangepointOptions {
	return ChangepointOptions{
		EnableGrowth:        true,
		AutoNumChangepoints: DefaultAutoNumChangepoints,
		AutoRange:           DefaultAutoRange,
	}
}

// GenerateAutoChangepoints places the automatic changepoints over the training times and
// replaces any configured ones. The first changepoint is never placed on the first time
// point since it would duplicate the intercept.
func (c *ChangepointOptions) GenerateAutoChangepoints(t []time.Time) []Changepoint {
	if !c.Auto || len(t) < 2 {
		return nil
	}
	n := c.AutoNumChangepoints
	if n <= 0 {
		n = DefaultAutoNumChangepoints
	}
	autoRange := c.AutoRange
	if autoRange <= 0 || autoRange > 1 {
		autoRange = DefaultAutoRange
	}

	minTime, maxTime := t[0], t[0]
	for _, tPnt := range t {
		if tPnt.Before(minTime) {
			minTime = tPnt
		}
		if tPnt.After(maxTime) {
			maxTime = tPnt
		}
	}

	span := float64(maxTime.Sub(minTime)) * autoRange
	chpts := make([]Changepoint, 0, n)
	for i := 1; i <= n; i++ {
		offset := time.Duration(span * float64(i) / float64(n))
		chpts = append(chpts, NewChangepoint("auto_"+strconv.Itoa(i), minTime.Add(offset)))
	}

	c.Changepoints = chpts
	return chpts
}

// GenerateFeatures computes the changepoint features. Changepoints at or after the training
// end have no training support and are skipped. The slope is scaled to 1 at the training end.
func (c ChangepointOptions) GenerateFeatures(t []time.Time, trainEnd time.Time) *feature.Set {
	feat := feature.NewSet()
	for i, chpt := range c.Changepoints {
		if !chpt.T.Before(trainEnd) {
			continue
		}
		name := chpt.Name
		if name == "" {
			name = strconv.Itoa(i)
		}

		delta := trainEnd.Sub(chpt.T).Seconds()
		bias := make([]float64, len(t))
		var slope []float64
		if c.EnableGrowth {
			slope = make([]float64, len(t))
		}
		for j, tPnt := range t {
			if tPnt.Before(chpt.T) {
				continue
			}
			bias[j] = 1.0
			if c.EnableGrowth {
				slope[j] = tPnt.Sub(chpt.T).Seconds() / delta
			}
		}

		feat.Set(feature.NewChangepoint(name, feature.ChangepointCompBias), bias)
		if c.EnableGrowth {
			feat.Set(feature.NewChangepoint(name, feature.ChangepointCompSlope), slope)
		}
	}
	return feat
}

func (c ChangepointOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	noCfg := " None"
	if len(c.Changepoints) > 0 {
		noCfg = ""
	}
	if _, err := fmt.Fprintf(w, "%s%sChangepoints:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noCfg); err != nil {
		return err
	}
	if len(c.Changepoints) == 0 {
		return nil
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tbl, "%s%sName\tDatetime\t\n", prefix, util.IndentExpand(indent, indentGrowth+1))
	for _, chpt := range c.Changepoints {
		fmt.Fprintf(tbl, "%s%s%s\t%s\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			chpt.Name, chpt.T.Format(time.DateOnly))
	}
	return tbl.Flush()
}
