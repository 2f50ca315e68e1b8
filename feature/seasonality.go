package feature

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type FourierComp string

const (
	FourierCompSin FourierComp = "sin"
	FourierCompCos FourierComp = "cos"
)

// Seasonality is one sine or cosine term of a Fourier series. Name is the seasonality the
// term belongs to, e.g. weekly or yearly.
type Seasonality struct {
	Name        string      `json:"name"`
	FourierComp FourierComp `json:"fourier_component"`
	Order       int         `json:"order"`
}

func NewSeasonality(name string, fcomp FourierComp, order int) *Seasonality {
	return &Seasonality{name, fcomp, order}
}

func (s Seasonality) String() string {
	return fmt.Sprintf("seas_%s_%d_%s", s.Name, s.Order, s.FourierComp)
}

func (s Seasonality) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return s.Name, true
	case "fourier_component":
		return string(s.FourierComp), true
	case "order":
		return strconv.Itoa(s.Order), true
	}
	return "", false
}

func (s Seasonality) Type() FeatureType {
	return FeatureTypeSeasonality
}

func (s Seasonality) Decode() map[string]string {
	return map[string]string{
		"name":              s.Name,
		"fourier_component": string(s.FourierComp),
		"order":             strconv.Itoa(s.Order),
	}
}

// Generate computes the Fourier term for epoch seconds given the period in seconds
func (s Seasonality) Generate(epoch []float64, periodSec float64) []float64 {
	omega := 2.0 * math.Pi * float64(s.Order) / periodSec
	res := make([]float64, len(epoch))
	for i, e := range epoch {
		rad := omega * e
		switch s.FourierComp {
		case FourierCompSin:
			res[i] = math.Sin(rad)
		case FourierCompCos:
			res[i] = math.Cos(rad)
		}
	}
	return res
}

func seasonalityFromLabels(labels map[string]string) (*Seasonality, error) {
	order, err := strconv.Atoi(labels["order"])
	if err != nil {
		return nil, fmt.Errorf("invalid seasonality order %q, %w", labels["order"], err)
	}
	fcomp := FourierComp(labels["fourier_component"])
	if fcomp != FourierCompSin && fcomp != FourierCompCos {
		return nil, fmt.Errorf("fourier component %q, %w", fcomp, ErrUnknownFeatureType)
	}
	return NewSeasonality(labels["name"], fcomp, order), nil
}
