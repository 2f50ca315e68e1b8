// Package service turns a series and a horizon into a decomposed forecast by joining the stored
// regressors onto the model's future frame.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/accidentcast/forecaster"
	"github.com/accidentcast/forecaster/regressor"
	"github.com/accidentcast/forecaster/series"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidHorizon = errors.New("invalid horizon")
	ErrUnknownPolicy  = errors.New("unknown missing regressor policy")
)

const DefaultMaxHorizonDays = 365

// MissingPolicy decides what happens to frame dates without a regressor row
type MissingPolicy string

const (
	// PolicyAbsent lets the regressor contribute nothing on dates without a row
	PolicyAbsent MissingPolicy = "absent"
	// PolicyError fails the forecast when any date lacks a row
	PolicyError MissingPolicy = "error"
)

func ParseMissingPolicy(raw string) (MissingPolicy, error) {
	switch p := MissingPolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case PolicyAbsent, PolicyError:
		return p, nil
	case "":
		return PolicyAbsent, nil
	}
	return "", fmt.Errorf("%q, %w", raw, ErrUnknownPolicy)
}

// Models resolves the forecaster of a series
type Models interface {
	Get(key string) (*forecaster.Forecaster, error)
	Contains(key string) bool
}

// Regressors loads the regressor table of a series
type Regressors interface {
	Load(key series.Key) (*regressor.Table, error)
}

type Options struct {
	MaxHorizonDays int
	MissingPolicy  MissingPolicy
}

func NewDefaultOptions() Options {
	return Options{
		MaxHorizonDays: DefaultMaxHorizonDays,
		MissingPolicy:  PolicyAbsent,
	}
}

// Service computes forecasts. It holds no mutable state and is safe for concurrent use.
type Service struct {
	models     Models
	regressors Regressors
	opt        Options
	metrics    *metrics
	log        logrus.FieldLogger
}

// New creates a forecast service. Metrics are registered on reg when it is not nil.
func New(models Models, regressors Regressors, opt Options, reg prometheus.Registerer, log logrus.FieldLogger) *Service {
	if opt.MaxHorizonDays <= 0 {
		opt.MaxHorizonDays = DefaultMaxHorizonDays
	}
	if opt.MissingPolicy == "" {
		opt.MissingPolicy = PolicyAbsent
	}
	return &Service{
		models:     models,
		regressors: regressors,
		opt:        opt,
		metrics:    newMetrics(reg),
		log:        log.WithField("component", "service"),
	}
}

// MaxHorizonDays is the largest accepted horizon
func (s *Service) MaxHorizonDays() int {
	return s.opt.MaxHorizonDays
}

// Forecast predicts every day of the series history followed by days more days
func (s *Service) Forecast(ctx context.Context, key string, days int) (*Forecast, error) {
	start := time.Now()
	res, err := s.forecast(ctx, key, days)

	// raw keys never become label values, only loaded series do
	label := labelUnknown
	if s.models.Contains(key) {
		label = key
	}
	status := statusOK
	switch {
	case errors.Is(err, series.ErrUnknownSeries):
		status = statusUnknownSeries
	case errors.Is(err, ErrInvalidHorizon):
		status = statusInvalidHorizon
	case err != nil:
		status = statusError
	}
	s.metrics.forecasts.WithLabelValues(label, status).Inc()
	if err != nil {
		s.log.WithError(err).WithField("series", key).WithField("days", days).Debug("Forecast failed")
		return nil, err
	}
	s.metrics.duration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	return res, nil
}

func (s *Service) forecast(ctx context.Context, key string, days int) (*Forecast, error) {
	if days < 0 || days > s.opt.MaxHorizonDays {
		return nil, fmt.Errorf("%d days is outside [0, %d], %w", days, s.opt.MaxHorizonDays, ErrInvalidHorizon)
	}

	f, err := s.models.Get(key)
	if err != nil {
		return nil, err
	}
	regs, err := s.regressors.Load(series.Key(key))
	if err != nil {
		return nil, err
	}

	frame, err := f.MakeFutureFrame(days)
	if err != nil {
		return nil, fmt.Errorf("unable to build future frame, %w", err)
	}
	joined := regs.Join(frame)

	if missing := regressor.Missing(frame, joined, f.RegressorNames()); len(missing) > 0 {
		if s.opt.MissingPolicy == PolicyError {
			return nil, fmt.Errorf("no regressors for %d dates starting %s, %w",
				len(missing), missing[0].Format(time.DateOnly), series.ErrDataFormat)
		}
		s.log.WithFields(logrus.Fields{
			"series":  key,
			"missing": len(missing),
			"first":   missing[0].Format(time.DateOnly),
		}).Debug("Regressors absent for some dates")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := f.Predict(frame, joined)
	if err != nil {
		return nil, fmt.Errorf("unable to predict %q, %w", key, err)
	}
	return newForecast(series.Key(key), f.History(), res), nil
}
