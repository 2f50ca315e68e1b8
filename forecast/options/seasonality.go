package options

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/accidentcast/forecaster/feature"
	"github.com/accidentcast/forecaster/forecast/util"
)

const (
	DefaultWeeklyOrders = 3
	DefaultYearlyOrders = 10
)

// SeasonalityOptions configures the number of seasonality components to fit for.
type SeasonalityOptions struct {
	SeasonalityConfigs []SeasonalityConfig `json:"seasonality_configs"`
}

// NewDefaultSeasonalityOptions generates a default seasonality config with weekly and yearly
// seasonal components
func NewDefaultSeasonalityOptions() SeasonalityOptions {
	return SeasonalityOptions{
		SeasonalityConfigs: []SeasonalityConfig{
			NewWeeklySeasonalityConfig(DefaultWeeklyOrders),
			NewYearlySeasonalityConfig(DefaultYearlyOrders),
		},
	}
}

// Names returns the name of every valid seasonality config ordered by period
func (s SeasonalityOptions) Names() []string {
	cfgs := s.validConfigs()
	names := make([]string, len(cfgs))
	for i, cfg := range cfgs {
		names[i] = cfg.Name
	}
	return names
}

// validConfigs drops configs without a name, period or orders and keeps the highest order
// config when two share a period or a name.
func (s SeasonalityOptions) validConfigs() []SeasonalityConfig {
	cfgs := make([]SeasonalityConfig, len(s.SeasonalityConfigs))
	copy(cfgs, s.SeasonalityConfigs)
	sort.Slice(cfgs, func(i, j int) bool {
		if cfgs[i].Period != cfgs[j].Period {
			return cfgs[i].Period < cfgs[j].Period
		}
		if cfgs[i].Orders != cfgs[j].Orders {
			return cfgs[i].Orders > cfgs[j].Orders
		}
		return cfgs[i].Name < cfgs[j].Name
	})

	valid := make([]SeasonalityConfig, 0, len(cfgs))
	seen := make(map[string]struct{})
	var lastPeriod time.Duration
	for _, cfg := range cfgs {
		if cfg.Name == "" || cfg.Orders <= 0 || cfg.Period <= lastPeriod {
			continue
		}
		if _, exists := seen[cfg.Name]; exists {
			continue
		}
		seen[cfg.Name] = struct{}{}
		lastPeriod = cfg.Period
		valid = append(valid, cfg)
	}
	return valid
}

// GenerateFeatures computes the sine and cosine terms of every config from epoch seconds
func (s SeasonalityOptions) GenerateFeatures(epoch []float64) *feature.Set {
	x := feature.NewSet()
	for _, cfg := range s.validConfigs() {
		period := cfg.Period.Seconds()
		for order := 1; order <= cfg.Orders; order++ {
			sinFeat := feature.NewSeasonality(cfg.Name, feature.FourierCompSin, order)
			cosFeat := feature.NewSeasonality(cfg.Name, feature.FourierCompCos, order)
			x.Set(sinFeat, sinFeat.Generate(epoch, period))
			x.Set(cosFeat, cosFeat.Generate(epoch, period))
		}
	}
	return x
}

func (s SeasonalityOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	cfgs := s.validConfigs()
	noCfg := " None"
	if len(cfgs) > 0 {
		noCfg = ""
	}
	if _, err := fmt.Fprintf(w, "%s%sSeasonality:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noCfg); err != nil {
		return err
	}
	if len(cfgs) == 0 {
		return nil
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tbl, "%s%sName\tPeriod\tOrders\t\n", prefix, util.IndentExpand(indent, indentGrowth+1))
	for _, cfg := range cfgs {
		fmt.Fprintf(tbl, "%s%s%s\t%s\t%d\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			cfg.Name, cfg.Period, cfg.Orders)
	}
	return tbl.Flush()
}

// SeasonalityConfig represents a single seasonality configuration to model. This will generate
// Fourier series of the specified period and number of orders. E.g. a period of 7 days with 3
// orders will create 6 Fourier series of order 1, 2, 3 for the sine/cosine components where
// order 1 has a period of 7 days and order 2 a period of 3.5 days.
type SeasonalityConfig struct {
	Name   string        `json:"name"`
	Orders int           `json:"orders"`
	Period time.Duration `json:"period"`
}

// NewSeasonalityConfig creates a new seasonality config given a name, period and orders
func NewSeasonalityConfig(name string, period time.Duration, orders int) SeasonalityConfig {
	if orders < 0 {
		orders = 0
	}
	return SeasonalityConfig{
		Name:   name,
		Orders: orders,
		Period: period,
	}
}

// NewWeeklySeasonalityConfig creates a weekly seasonality config given a specified number of orders
func NewWeeklySeasonalityConfig(orders int) SeasonalityConfig {
	return NewSeasonalityConfig(LabelSeasWeekly, 7*24*time.Hour, orders)
}

// NewYearlySeasonalityConfig creates a yearly seasonality config of 365.25 days
func NewYearlySeasonalityConfig(orders int) SeasonalityConfig {
	return NewSeasonalityConfig(LabelSeasYearly, time.Duration(365.25*24*float64(time.Hour)), orders)
}
