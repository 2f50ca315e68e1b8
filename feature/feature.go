// Package feature describes the labelled regressors of an additive time series model. Each
// feature knows its type so a fitted weight can be routed to the component it explains.
package feature

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownFeatureType = errors.New("unknown feature type")

// FeatureType groups features by the model component they contribute to
type FeatureType string

const (
	FeatureTypeChangepoint FeatureType = "changepoint"
	FeatureTypeSeasonality FeatureType = "seasonality"
	FeatureTypeTime        FeatureType = "time"
	FeatureTypeEvent       FeatureType = "event"
	FeatureTypeGrowth      FeatureType = "growth"
	FeatureTypeRegressor   FeatureType = "regressor"
)

// Feature is a single labelled column of a design matrix
type Feature interface {
	String() string
	Get(string) (string, bool)
	Type() FeatureType
	Decode() map[string]string
}

// FromLabels rebuilds a feature from its type and the label map produced by Decode.
func FromLabels(typ FeatureType, labels map[string]string) (Feature, error) {
	get := func(key string) string {
		return labels[key]
	}
	switch typ {
	case FeatureTypeChangepoint:
		comp := ChangepointComp(get("changepoint_component"))
		if comp != ChangepointCompBias && comp != ChangepointCompSlope {
			return nil, fmt.Errorf("changepoint component %q, %w", comp, ErrUnknownFeatureType)
		}
		return NewChangepoint(get("name"), comp), nil
	case FeatureTypeSeasonality:
		s, err := seasonalityFromLabels(labels)
		if err != nil {
			return nil, err
		}
		return s, nil
	case FeatureTypeTime:
		return NewTime(get("name")), nil
	case FeatureTypeEvent:
		return NewEvent(get("name")), nil
	case FeatureTypeGrowth:
		return NewGrowth(get("name")), nil
	case FeatureTypeRegressor:
		return NewRegressor(get("name")), nil
	}
	return nil, fmt.Errorf("%q, %w", typ, ErrUnknownFeatureType)
}

func getName(name, label string) (string, bool) {
	if strings.ToLower(label) == "name" {
		return name, true
	}
	return "", false
}
