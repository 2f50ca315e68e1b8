package forecaster

import (
	"time"

	"github.com/accidentcast/forecaster/forecast"
)

// Results holds the prediction, its bounds and its additive decomposition per time point
type Results struct {
	T          []time.Time          `json:"time"`
	Forecast   []float64            `json:"forecast"`
	Upper      []float64            `json:"upper"`
	Lower      []float64            `json:"lower"`
	Components *forecast.Components `json:"components"`
}
