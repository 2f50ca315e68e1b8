// Package linearmodel solves the least squares problems behind each forecast fit.
package linearmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultRankTolerance is the relative size of an R diagonal entry below which the
// corresponding feature is treated as linearly dependent and given a zero coefficient.
const DefaultRankTolerance = 1e-10

// OLSOptions represents input options to run the OLS Regression
type OLSOptions struct {
	// FitIntercept adds a constant 1.0 feature as the first column if set to true
	FitIntercept bool

	RankTolerance float64
}

// Validate runs basic validation on OLS options
func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		o = NewDefaultOLSOptions()
	}
	if o.RankTolerance <= 0 {
		o.RankTolerance = DefaultRankTolerance
	}
	return o, nil
}

// NewDefaultOLSOptions returns a default set of OLS Regression options
func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept:  true,
		RankTolerance: DefaultRankTolerance,
	}
}

// OLSRegression computes ordinary least squares using QR factorization
type OLSRegression struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64
}

// NewOLSRegression initializes an ordinary least squares model ready for fitting
func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &OLSRegression{opt: opt}, nil
}

func withOnes(x mat.Matrix) mat.Matrix {
	m, _ := x.Dims()
	ones := make([]float64, m)
	floats.AddConst(1.0, ones)

	var stacked mat.Dense
	stacked.Stack(mat.NewDense(1, m, ones), x.T())
	return stacked.T()
}

// Fit the model according to the given training data. x has one row per observation and y
// is a single column of targets.
func (o *OLSRegression) Fit(x, y mat.Matrix) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, _ := x.Dims()
	ym, _ := y.Dims()
	if ym != m {
		return fmt.Errorf("training data has %d rows and target has %d row, %w", m, ym, ErrTargetLenMismatch)
	}

	if o.opt.FitIntercept {
		x = withOnes(x)
	}
	_, n := x.Dims()
	if m < n {
		return fmt.Errorf("%d observations for %d features, %w", m, n, ErrUnderdetermined)
	}

	qr := new(mat.QR)
	qr.Factorize(x)

	q := new(mat.Dense)
	r := new(mat.Dense)
	qr.QTo(q)
	qr.RTo(r)

	yq := new(mat.Dense)
	yq.Mul(y.T(), q)

	var maxDiag float64
	for i := 0; i < n; i++ {
		maxDiag = math.Max(maxDiag, math.Abs(r.At(i, i)))
	}

	// back substitution, dependent columns are pinned to zero
	c := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		rii := r.At(i, i)
		if math.Abs(rii) <= maxDiag*o.opt.RankTolerance {
			c[i] = 0
			continue
		}
		c[i] = yq.At(0, i)
		for j := i + 1; j < n; j++ {
			c[i] -= c[j] * r.At(i, j)
		}
		c[i] /= rii
	}

	if o.opt.FitIntercept {
		o.intercept = c[0]
		o.coef = c[1:]
	} else {
		o.coef = c
	}
	return nil
}

// Predict using the OLS model
func (o *OLSRegression) Predict(x mat.Matrix) ([]float64, error) {
	if o.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}

	coef := o.coef
	if o.opt.FitIntercept {
		coef = append([]float64{o.intercept}, o.coef...)
		x = withOnes(x)
	}
	_, xn := x.Dims()
	if xn != len(coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", xn, len(coef), ErrFeatureLenMismatch)
	}

	var res mat.Dense
	res.Mul(mat.NewDense(1, len(coef), coef), x.T())
	return res.RawRowView(0), nil
}

// Score computes the coefficient of determination of the prediction
func (o *OLSRegression) Score(x, y mat.Matrix) (float64, error) {
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}
	res, err := o.Predict(x)
	if err != nil {
		return 0.0, err
	}
	ym, _ := y.Dims()
	if ym != len(res) {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d rows, %w", len(res), ym, ErrTargetLenMismatch)
	}
	return stat.RSquaredFrom(res, mat.Col(nil, 0, y), nil), nil
}

// Intercept returns the computed intercept if FitIntercept is set to true. Defaults to 0.0 if not set.
func (o *OLSRegression) Intercept() float64 {
	return o.intercept
}

// Coef returns a slice of the trained coefficients in the same order of the training feature Matrix by column.
func (o *OLSRegression) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}
