package options

import (
	"errors"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/accidentcast/forecaster/feature"
	"github.com/accidentcast/forecaster/forecast/util"
	"github.com/accidentcast/forecaster/stats"
)

var ErrRegressorLenMismatch = errors.New("regressor length does not match time points")

// Regressor is an extra covariate with the standardization learnt on the training data
type Regressor struct {
	Name string  `json:"name"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

func NewRegressor(name string) Regressor {
	return Regressor{Name: name, Std: 1.0}
}

// RegressorOptions lists the extra regressors added to the model
type RegressorOptions struct {
	Regressors []Regressor `json:"regressors"`
}

// Names returns the configured regressor names in order
func (r RegressorOptions) Names() []string {
	names := make([]string, len(r.Regressors))
	for i, reg := range r.Regressors {
		names[i] = reg.Name
	}
	return names
}

// Standardize learns the mean and standard deviation of each regressor from the training
// values. Constant or absent regressors keep a unit standard deviation.
func (r *RegressorOptions) Standardize(values map[string][]float64) {
	for i, reg := range r.Regressors {
		mean, std := stats.MeanStdDev(values[reg.Name])
		if std == 0 || math.IsNaN(std) {
			std = 1.0
		}
		r.Regressors[i].Mean = mean
		r.Regressors[i].Std = std
	}
}

// GenerateFeatures standardizes the regressor values of n time points. A missing regressor
// or a NaN value yields 0 so it contributes nothing to the prediction.
func (r RegressorOptions) GenerateFeatures(values map[string][]float64, n int) (*feature.Set, error) {
	rFeat := feature.NewSet()
	for _, reg := range r.Regressors {
		data := make([]float64, n)
		raw, exists := values[reg.Name]
		if exists && len(raw) != n {
			return nil, fmt.Errorf("%q has %d values for %d time points, %w", reg.Name, len(raw), n, ErrRegressorLenMismatch)
		}
		std := reg.Std
		if std == 0 {
			std = 1.0
		}
		for i, v := range raw {
			if math.IsNaN(v) {
				continue
			}
			data[i] = (v - reg.Mean) / std
		}
		rFeat.Set(feature.NewRegressor(reg.Name), data)
	}
	return rFeat, nil
}

func (r RegressorOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	noCfg := " None"
	if len(r.Regressors) > 0 {
		noCfg = ""
	}
	if _, err := fmt.Fprintf(w, "%s%sRegressors:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noCfg); err != nil {
		return err
	}
	if len(r.Regressors) == 0 {
		return nil
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tbl, "%s%sName\tMean\tStd\t\n", prefix, util.IndentExpand(indent, indentGrowth+1))
	for _, reg := range r.Regressors {
		fmt.Fprintf(tbl, "%s%s%s\t%.3f\t%.3f\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			reg.Name, reg.Mean, reg.Std)
	}
	return tbl.Flush()
}
