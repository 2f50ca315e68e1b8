package forecaster

import (
	"github.com/accidentcast/forecaster/forecast/options"
)

const (
	DefaultResidualWindow = 28
	// DefaultResidualZscore gives an 80% interval under normal residuals
	DefaultResidualZscore = 1.28
)

// OutlierOptions configures the passes that drop outliers from the training data before the
// final series fit
type OutlierOptions struct {
	NumPasses       int     `json:"num_passes"`
	UpperPercentile float64 `json:"upper_percentile"`
	LowerPercentile float64 `json:"lower_percentile"`
	TukeyFactor     float64 `json:"tukey_factor"`
}

func NewOutlierOptions() *OutlierOptions {
	return &OutlierOptions{
		NumPasses:       3,
		UpperPercentile: 0.9,
		LowerPercentile: 0.1,
		TukeyFactor:     1.0,
	}
}

// Options configures the series model, the uncertainty model fit on the rolling residual
// standard deviation, and the optional outlier removal.
type Options struct {
	SeriesOptions      *options.Options `json:"series_options"`
	UncertaintyOptions *options.Options `json:"uncertainty_options"`

	OutlierOptions *OutlierOptions `json:"outlier_options"`
	ResidualWindow int             `json:"residual_window"`
	ResidualZscore float64         `json:"residual_zscore"`
}

// NewDefaultOptions returns a forecaster for daily counts. The uncertainty model only tracks a
// level with weekly and yearly seasonality.
func NewDefaultOptions() *Options {
	return &Options{
		SeriesOptions:      options.NewDefaultOptions(),
		UncertaintyOptions: NewDefaultUncertaintyOptions(),
		ResidualWindow:     DefaultResidualWindow,
		ResidualZscore:     DefaultResidualZscore,
	}
}

func NewDefaultUncertaintyOptions() *options.Options {
	return &options.Options{
		SeasonalityOptions: options.SeasonalityOptions{
			SeasonalityConfigs: []options.SeasonalityConfig{
				options.NewWeeklySeasonalityConfig(2),
				options.NewYearlySeasonalityConfig(2),
			},
		},
	}
}
