// Package options contains all forecast options for a linear fit of a daily univariate time
// series: growth, changepoints, seasonality, holidays, custom events and extra regressors.
package options

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/accidentcast/forecaster/feature"
	"github.com/accidentcast/forecaster/forecast/util"
)

const (
	LabelTimeEpoch = "epoch"

	LabelSeasWeekly = "weekly"
	LabelSeasYearly = "yearly"
)

var ErrNameCollision = errors.New("name collides with another forecast column")

// outputColumns are the fixed columns of a forecast record. Seasonality and regressor names
// become columns next to them.
var outputColumns = map[string]struct{}{
	"ds":                        {},
	"yhat":                      {},
	"yhat_lower":                {},
	"yhat_upper":                {},
	"trend":                     {},
	"holidays":                  {},
	"extra_regressors_additive": {},
	"additive_terms":            {},
}

// Options configures a forecast by specifying the growth, changepoints, seasonality orders,
// holiday calendar, events and extra regressors.
type Options struct {
	GrowthType string `json:"growth_type"`

	ChangepointOptions ChangepointOptions `json:"changepoint_options"`
	SeasonalityOptions SeasonalityOptions `json:"seasonality_options"`
	HolidayOptions     HolidayOptions     `json:"holiday_options"`
	EventOptions       EventOptions       `json:"event_options"`
	RegressorOptions   RegressorOptions   `json:"regressor_options"`

	// MaskWindow shapes holiday and event masks with a window function, e.g. hann
	MaskWindow string `json:"mask_window"`
}

// NewDefaultOptions returns a set of default forecast options for daily counts: linear growth,
// weekly and yearly seasonality and French public holidays.
func NewDefaultOptions() *Options {
	return &Options{
		GrowthType:         feature.GrowthLinear,
		ChangepointOptions: NewDefaultChangepointOptions(),
		SeasonalityOptions: NewDefaultSeasonalityOptions(),
		HolidayOptions:     NewDefaultHolidayOptions(),
	}
}

// CheckNames rejects seasonality and regressor names that shadow a fixed output column or
// each other
func (o *Options) CheckNames() error {
	if o == nil {
		return nil
	}
	seen := make(map[string]struct{})
	names := append(o.SeasonalityOptions.Names(), o.RegressorOptions.Names()...)
	for _, name := range names {
		if _, fixed := outputColumns[name]; fixed {
			return fmt.Errorf("%q is an output column, %w", name, ErrNameCollision)
		}
		if _, exists := seen[name]; exists {
			return fmt.Errorf("%q is used twice, %w", name, ErrNameCollision)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// GenerateFeatures builds every model feature for the time points t. Regressor values are
// keyed by regressor name and must be aligned with t. Each feature value only depends on its
// own time point and the training window, so a frame extended with future days reproduces the
// historical rows exactly.
func (o *Options) GenerateFeatures(t []time.Time, trainStart, trainEnd time.Time, regressors map[string][]float64) (*feature.Set, error) {
	if o == nil {
		o = NewDefaultOptions()
	}

	feat := feature.NewSet()
	if len(t) == 0 {
		return feat, nil
	}

	epoch := feature.NewTime(LabelTimeEpoch).Generate(t)
	feat.Update(o.generateGrowthFeatures(epoch, trainStart, trainEnd))
	feat.Update(o.ChangepointOptions.GenerateFeatures(t, trainEnd))
	feat.Update(o.SeasonalityOptions.GenerateFeatures(epoch))

	holFeat, err := o.HolidayOptions.GenerateFeatures(t, o.MaskWindow)
	if err != nil {
		return nil, err
	}
	feat.Update(holFeat)
	feat.Update(o.EventOptions.GenerateFeatures(t, o.MaskWindow))

	regFeat, err := o.RegressorOptions.GenerateFeatures(regressors, len(t))
	if err != nil {
		return nil, err
	}
	feat.Update(regFeat)
	return feat, nil
}

func (o *Options) generateGrowthFeatures(epoch []float64, trainStart, trainEnd time.Time) *feature.Set {
	gFeat := feature.NewSet()

	intercept := feature.Intercept()
	gFeat.Set(intercept, intercept.Generate(epoch, trainStart, trainEnd))

	if o.GrowthType == feature.GrowthLinear && trainEnd.After(trainStart) {
		linear := feature.Linear()
		gFeat.Set(linear, linear.Generate(epoch, trainStart, trainEnd))
	}
	return gFeat
}

// TablePrint writes a human readable summary of the options
func (o *Options) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	growth := o.GrowthType
	if growth == "" {
		growth = "flat"
	}
	if _, err := fmt.Fprintf(w, "%s%sGrowth: %s\n", prefix, util.IndentExpand(indent, indentGrowth), growth); err != nil {
		return err
	}
	if err := o.SeasonalityOptions.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	if err := o.ChangepointOptions.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	if err := o.HolidayOptions.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	if err := o.EventOptions.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	return o.RegressorOptions.TablePrint(w, prefix, indent, indentGrowth)
}
