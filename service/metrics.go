package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusOK             = "ok"
	statusUnknownSeries  = "unknown_series"
	statusInvalidHorizon = "invalid_horizon"
	statusError          = "error"

	labelUnknown = "unknown"
)

type metrics struct {
	forecasts *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// newMetrics registers the service collectors on reg. A nil reg leaves them unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		forecasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "accidentcast",
				Name:      "forecasts_total",
				Help:      "Total number of forecasts served",
			},
			[]string{"series", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "accidentcast",
				Name:      "forecast_duration_seconds",
				Help:      "Duration of forecast computations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"series"},
		),
	}
}
