// Package forecast fits and evaluates a single additive linear model of a daily series.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/accidentcast/forecaster/feature"
	"github.com/accidentcast/forecaster/forecast/options"
	"github.com/accidentcast/forecaster/linearmodel"
	"github.com/accidentcast/forecaster/stats"
	"github.com/accidentcast/forecaster/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUninitializedForecast    = errors.New("uninitialized forecast")
	ErrInsufficientTrainingData = errors.New("insufficient training data after removing Nans")
	ErrNoModelCoefficients      = errors.New("no model coefficients from fit")
	ErrUntrainedForecast        = errors.New("forecast has not been trained yet")
	ErrNoOptions                = errors.New("no options set in model")
	ErrWeightLenMismatch        = errors.New("number of weights does not match number of features")
)

// Forecast represents a single forecast model of a time series. This is a linear model fit by
// ordinary least squares that decomposes the series into a trend (growth and changepoints),
// seasonal components, holidays and extra regressor effects.
type Forecast struct {
	opt    *options.Options
	scores *stats.Scores

	fLabels *feature.Labels
	coef    []float64

	trainStartTime time.Time
	trainEndTime   time.Time
	residual       []float64
	trained        bool
}

// New creates a new forecast instance with the given options. If none are provided, a default
// is used
func New(opt *options.Options) (*Forecast, error) {
	if opt == nil {
		opt = options.NewDefaultOptions()
	}
	if err := opt.CheckNames(); err != nil {
		return nil, err
	}
	return &Forecast{opt: opt}, nil
}

// NewFromModel creates a new forecast instance given a forecast Model to initialize. This
// instance can be used for inference immediately and does not need to be trained again.
func NewFromModel(model Model) (*Forecast, error) {
	if model.Options == nil {
		return nil, ErrNoOptions
	}
	if err := model.Options.CheckNames(); err != nil {
		return nil, err
	}
	labels, err := model.Weights.FeatureLabels()
	if err != nil {
		return nil, err
	}
	return &Forecast{
		opt:            model.Options,
		fLabels:        feature.NewLabels(labels),
		coef:           model.Weights.Coefficients(),
		trainStartTime: model.TrainStartTime,
		trainEndTime:   model.TrainEndTime,
		scores:         model.Scores,
		trained:        true,
	}, nil
}

// Options returns the options of the forecast
func (f *Forecast) Options() *options.Options {
	if f == nil {
		return nil
	}
	return f.opt
}

// TrainStartTime returns the first non NaN training time point
func (f *Forecast) TrainStartTime() time.Time {
	return f.trainStartTime
}

// TrainEndTime returns the last non NaN training time point
func (f *Forecast) TrainEndTime() time.Time {
	return f.trainEndTime
}

// Fit takes the input training data and fits the model. NaN observations are left out of the
// fit. Regressor values are keyed by regressor name and aligned with t.
func (f *Forecast) Fit(t []time.Time, y []float64, regressors map[string][]float64) error {
	if f == nil {
		return ErrUninitializedForecast
	}

	trainingData, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return err
	}

	keep := make([]int, 0, len(t))
	for i, v := range trainingData.Y {
		if !math.IsNaN(v) {
			keep = append(keep, i)
		}
	}
	if len(keep) <= 1 {
		return ErrInsufficientTrainingData
	}

	trainingT := make([]time.Time, len(keep))
	trainingY := make([]float64, len(keep))
	for j, i := range keep {
		trainingT[j] = trainingData.T[i]
		trainingY[j] = trainingData.Y[i]
	}
	trainingRegs := make(map[string][]float64, len(regressors))
	for name, vals := range regressors {
		if len(vals) != len(t) {
			return fmt.Errorf("%q has %d values for %d time points, %w", name, len(vals), len(t), options.ErrRegressorLenMismatch)
		}
		sub := make([]float64, len(keep))
		for j, i := range keep {
			sub[j] = vals[i]
		}
		trainingRegs[name] = sub
	}

	f.trainStartTime = trainingT[0]
	f.trainEndTime = trainingT[len(trainingT)-1]
	if !f.trained {
		f.opt.ChangepointOptions.GenerateAutoChangepoints(trainingT)
	}
	f.opt.RegressorOptions.Standardize(trainingRegs)

	x, err := f.opt.GenerateFeatures(trainingT, f.trainStartTime, f.trainEndTime, trainingRegs)
	if err != nil {
		return err
	}

	// features never active in the training window cannot be estimated
	x = x.Filter(func(feat feature.Feature) bool {
		data, _ := x.Get(feat)
		for _, v := range data {
			if v != 0 {
				return true
			}
		}
		return false
	})
	if x.Len() == 0 {
		return ErrNoModelCoefficients
	}

	model, err := linearmodel.NewOLSRegression(&linearmodel.OLSOptions{FitIntercept: false})
	if err != nil {
		return err
	}
	if err := model.Fit(x.Matrix(), mat.NewDense(len(trainingY), 1, trainingY)); err != nil {
		return fmt.Errorf("unable to fit series, %w", err)
	}

	f.fLabels = x.Labels()
	f.coef = model.Coef()
	f.trained = true

	// use input training to include NaNs
	predicted, err := f.Predict(trainingData.T, regressors)
	if err != nil {
		return err
	}

	scores, err := stats.NewScores(predicted, trainingData.Y)
	if err != nil {
		return err
	}
	f.scores = scores

	residual := make([]float64, len(trainingData.Y))
	floats.SubTo(residual, trainingData.Y, predicted)
	f.residual = residual
	return nil
}

// Predict takes a slice of times in any order and produces the predicted value for those
// times given a pre-trained model.
func (f *Forecast) Predict(t []time.Time, regressors map[string][]float64) ([]float64, error) {
	comp, err := f.PredictComponents(t, regressors)
	if err != nil {
		return nil, err
	}
	return comp.Total(), nil
}

// PredictComponents returns the additive decomposition of the prediction at each time point
func (f *Forecast) PredictComponents(t []time.Time, regressors map[string][]float64) (*Components, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}
	if !f.trained {
		return nil, ErrUntrainedForecast
	}

	x, err := f.opt.GenerateFeatures(t, f.trainStartTime, f.trainEndTime, regressors)
	if err != nil {
		return nil, err
	}
	return f.runInference(x, len(t)), nil
}

// runInference applies the fitted weights feature by feature. Features not seen during the fit
// carry a zero weight.
func (f *Forecast) runInference(x *feature.Set, n int) *Components {
	comp := newComponents(n, f.opt.SeasonalityOptions.Names(), f.opt.RegressorOptions.Names())
	for _, feat := range x.Labels().Labels() {
		idx, exists := f.fLabels.Index(feat)
		if !exists {
			continue
		}
		w := f.coef[idx]
		if w == 0 {
			continue
		}
		data, _ := x.Get(feat)
		comp.add(feat, w, data)
	}
	return comp
}

// FeatureLabels returns the slice of feature labels in the order of the coefficients
func (f *Forecast) FeatureLabels() []feature.Feature {
	if f == nil {
		return nil
	}
	return f.fLabels.Labels()
}

// Coefficients returns a forecast model map of coefficients keyed by the string
// representation of each feature label
func (f *Forecast) Coefficients() (map[string]float64, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}

	labels := f.fLabels.Labels()
	if len(labels) == 0 || len(f.coef) == 0 {
		return nil, ErrNoModelCoefficients
	}
	coef := make(map[string]float64, len(f.coef))
	for i, c := range f.coef {
		coef[labels[i].String()] = c
	}
	return coef, nil
}

// Model returns the serializeable format of the forecast model composing of the forecast
// options, the training window, coefficients with their feature labels, and the fit scores
func (f *Forecast) Model() (Model, error) {
	if f == nil {
		return Model{}, ErrUninitializedForecast
	}
	if !f.trained {
		return Model{}, ErrUntrainedForecast
	}

	labels := f.fLabels.Labels()
	fws := make([]FeatureWeight, len(f.coef))
	for i, c := range f.coef {
		fws[i] = NewFeatureWeight(labels[i], c)
	}
	return Model{
		TrainStartTime: f.trainStartTime,
		TrainEndTime:   f.trainEndTime,
		Options:        f.opt,
		Weights:        Weights{Coef: fws},
		Scores:         f.scores,
	}, nil
}

// ModelEq returns a string representation of the model linear equation in the format of
// y ~ m1x1 + m2x2 + ...
func (f *Forecast) ModelEq() (string, error) {
	coef, err := f.Coefficients()
	if err != nil {
		return "", err
	}

	terms := make([]string, 0, len(coef))
	for _, label := range f.fLabels.Labels() {
		w := coef[label.String()]
		if w == 0 {
			continue
		}
		terms = append(terms, fmt.Sprintf("%.2f*%s", w, label))
	}
	if len(terms) == 0 {
		return "y ~ 0", nil
	}
	return "y ~ " + strings.Join(terms, " + "), nil
}

// Scores returns the fit scores for evaluating how well the resulting model
// fit the training data
func (f *Forecast) Scores() stats.Scores {
	if f == nil || f.scores == nil {
		return stats.Scores{}
	}
	return *f.scores
}

// Residuals returns a slice of values representing the difference between the
// training data and the fit data
func (f *Forecast) Residuals() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.residual))
	copy(res, f.residual)
	return res
}
