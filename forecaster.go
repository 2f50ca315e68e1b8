// Package forecaster fits and serves additive forecasts of daily series along with an
// uncertainty band learnt from the rolling spread of the fit residual.
package forecaster

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/accidentcast/forecaster/forecast"
	"github.com/accidentcast/forecaster/forecast/options"
	"github.com/accidentcast/forecaster/stats"
	"github.com/accidentcast/forecaster/timedataset"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrInsufficientResidual = errors.New("insufficient samples from residual after outlier removal")
	ErrNoOptionsInModel     = errors.New("no options set in model")
	ErrNoHistory            = errors.New("model has no history range")
)

const (
	MinResidualWindow       = 2
	MinResidualSize         = 2
	MinResidualWindowFactor = 4
)

// Forecaster fits a forecast model and can be used to generate forecasts
type Forecaster struct {
	opt *Options

	seriesForecast      *forecast.Forecast
	uncertaintyForecast *forecast.Forecast

	history         History
	fitTrainingData *timedataset.TimeDataset
	fitResults      *Results
	residual        []float64
}

// New creates a new instance of a Forecaster using the provided options. If no options are
// provided a default is used.
func New(opt *Options) (*Forecaster, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if opt.SeriesOptions == nil {
		opt.SeriesOptions = options.NewDefaultOptions()
	}
	if opt.UncertaintyOptions == nil {
		opt.UncertaintyOptions = NewDefaultUncertaintyOptions()
	}

	seriesForecast, err := forecast.New(opt.SeriesOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecast series, %w", err)
	}
	uncertaintyForecast, err := forecast.New(opt.UncertaintyOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecast uncertainty, %w", err)
	}
	return &Forecaster{
		opt:                 opt,
		seriesForecast:      seriesForecast,
		uncertaintyForecast: uncertaintyForecast,
	}, nil
}

// NewFromModel creates a new instance of Forecaster from a pre-existing model. This should be
// generated from a previous forecaster call to Model().
func NewFromModel(model Model) (*Forecaster, error) {
	if model.Options == nil {
		return nil, ErrNoOptionsInModel
	}
	if model.History.Start.IsZero() || model.History.End.Before(model.History.Start) {
		return nil, ErrNoHistory
	}
	opt := model.Options
	opt.SeriesOptions = model.Series.Options
	opt.UncertaintyOptions = model.Uncertainty.Options

	seriesForecast, err := forecast.NewFromModel(model.Series)
	if err != nil {
		return nil, fmt.Errorf("unable to load from series model, %w", err)
	}
	uncertaintyForecast, err := forecast.NewFromModel(model.Uncertainty)
	if err != nil {
		return nil, fmt.Errorf("unable to load from uncertainty model, %w", err)
	}
	return &Forecaster{
		opt:                 opt,
		seriesForecast:      seriesForecast,
		uncertaintyForecast: uncertaintyForecast,
		history:             model.History,
	}, nil
}

// Fit uses the input time dataset and fits the series model then the uncertainty model
func (f *Forecaster) Fit(t []time.Time, y []float64, regressors map[string][]float64) error {
	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return fmt.Errorf("unable to create training dataset, %w", err)
	}
	f.fitTrainingData = td.Copy()
	f.history = History{
		Start: timedataset.Midnight(td.T[0]),
		End:   timedataset.Midnight(td.T[td.Len()-1]),
	}

	residual, err := f.fitSeriesWithOutliers(td.T, td.Y, regressors)
	if err != nil {
		return err
	}
	f.residual = residual

	if err := f.fitResidual(td.T, residual); err != nil {
		return err
	}

	f.fitResults, err = f.Predict(t, regressors)
	if err != nil {
		return fmt.Errorf("unable to get predicted values from training set, %w", err)
	}
	return nil
}

func (f *Forecaster) fitSeriesWithOutliers(t []time.Time, y []float64, regressors map[string][]float64) ([]float64, error) {
	numPasses := 0
	if f.opt.OutlierOptions != nil {
		numPasses = f.opt.OutlierOptions.NumPasses
	}

	var residual []float64
	for i := 0; i <= numPasses; i++ {
		if err := f.seriesForecast.Fit(t, y, regressors); err != nil {
			return nil, fmt.Errorf("unable to forecast series, %w", err)
		}
		residual = f.seriesForecast.Residuals()
		if f.opt.OutlierOptions == nil || i == numPasses {
			break
		}

		outlierIdxs, err := stats.DetectOutliers(
			residual,
			f.opt.OutlierOptions.LowerPercentile,
			f.opt.OutlierOptions.UpperPercentile,
			f.opt.OutlierOptions.TukeyFactor,
		)
		if err != nil {
			return nil, fmt.Errorf("unable to detect outliers, %w", err)
		}
		if len(outlierIdxs) == 0 {
			break
		}
		for _, idx := range outlierIdxs {
			y[idx] = math.NaN()
		}
	}
	return residual, nil
}

// fitResidual fits the uncertainty model on the rolling standard deviation of the residual
// scaled by the z-score. The rolling series is centered on its window.
func (f *Forecaster) fitResidual(t []time.Time, residual []float64) error {
	if len(residual) < MinResidualSize {
		return ErrInsufficientResidual
	}

	window := f.opt.ResidualWindow
	if len(residual)/MinResidualWindowFactor < window {
		window = len(residual) / MinResidualWindowFactor
	}
	if window < MinResidualWindow {
		window = MinResidualWindow
	}

	stddev, err := stats.RollingStdDev(residual, window)
	if err != nil {
		return fmt.Errorf("unable to compute residual spread, %w", err)
	}
	floats.Scale(f.opt.ResidualZscore, stddev)

	start := window / 2
	end := start + len(stddev)
	if err := f.uncertaintyForecast.Fit(t[start:end], stddev, nil); err != nil {
		return fmt.Errorf("unable to forecast residual, %w", err)
	}
	return nil
}

// Predict takes in any set of time samples and generates a forecast, upper, lower values per
// time point along with the additive components of the forecast.
func (f *Forecaster) Predict(t []time.Time, regressors map[string][]float64) (*Results, error) {
	comp, err := f.seriesForecast.PredictComponents(t, regressors)
	if err != nil {
		return nil, fmt.Errorf("unable to predict series forecasts, %w", err)
	}
	width, err := f.uncertaintyForecast.Predict(t, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to predict uncertainty, %w", err)
	}

	yhat := comp.Total()
	upper := make([]float64, len(yhat))
	lower := make([]float64, len(yhat))
	for i, w := range width {
		w = math.Max(w, 0.0)
		upper[i] = yhat[i] + w
		lower[i] = yhat[i] - w
	}

	return &Results{
		T:          t,
		Forecast:   yhat,
		Upper:      upper,
		Lower:      lower,
		Components: comp,
	}, nil
}

// MakeFutureFrame returns every day of the training history followed by days more days
func (f *Forecaster) MakeFutureFrame(days int) ([]time.Time, error) {
	return timedataset.FutureFrame(f.history.Start, f.history.End, days)
}

// History returns the first and last day the forecaster was trained on
func (f *Forecaster) History() History {
	return f.history
}

// SeriesOptions returns the options of the series model
func (f *Forecaster) SeriesOptions() *options.Options {
	return f.seriesForecast.Options()
}

// RegressorNames lists the extra regressors the series model expects
func (f *Forecaster) RegressorNames() []string {
	return f.seriesForecast.Options().RegressorOptions.Names()
}

// Changepoints returns the changepoints of the trend inside the training window
func (f *Forecaster) Changepoints() []time.Time {
	var res []time.Time
	for _, c := range f.seriesForecast.Options().ChangepointOptions.Changepoints {
		if c.T.Before(f.seriesForecast.TrainEndTime()) {
			res = append(res, c.T)
		}
	}
	return res
}

// Residuals returns the difference between the final series fit against the training data
func (f *Forecaster) Residuals() []float64 {
	return f.residual
}

// SeriesCoefficients returns all coefficient weight associated with the component label string
func (f *Forecaster) SeriesCoefficients() (map[string]float64, error) {
	return f.seriesForecast.Coefficients()
}

// SeriesModelEq returns a string representation of the fit series model
func (f *Forecaster) SeriesModelEq() (string, error) {
	return f.seriesForecast.ModelEq()
}

// UncertaintyModelEq returns a string representation of the fit uncertainty model
func (f *Forecaster) UncertaintyModelEq() (string, error) {
	return f.uncertaintyForecast.ModelEq()
}

// TrainingData returns the training data used to fit the current forecaster model
func (f *Forecaster) TrainingData() *timedataset.TimeDataset {
	return f.fitTrainingData
}

// FitResults returns the results of the fit which includes the forecast, upper, and lower values
func (f *Forecaster) FitResults() *Results {
	return f.fitResults
}

// Model generates a serializeable representation of the fit options, series model, and
// uncertainty model. This can be used to initialize a new Forecaster for immediate predictions
// skipping the training step.
func (f *Forecaster) Model() (Model, error) {
	seriesModel, err := f.seriesForecast.Model()
	if err != nil {
		return Model{}, fmt.Errorf("unable to fetch series model, %w", err)
	}
	uncertaintyModel, err := f.uncertaintyForecast.Model()
	if err != nil {
		return Model{}, fmt.Errorf("unable to fetch uncertainty model, %w", err)
	}
	return Model{
		Options:     f.opt,
		History:     f.history,
		Series:      seriesModel,
		Uncertainty: uncertaintyModel,
	}, nil
}
