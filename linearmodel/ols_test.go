package linearmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestOLSRegression(t *testing.T) {
	testData := map[string]struct {
		opt          *OLSOptions
		x            *mat.Dense
		y            *mat.Dense
		expIntercept float64
		expCoef      []float64
		err          error
	}{
		"with intercept": {
			x:            mat.NewDense(4, 2, []float64{0, 1, 1, 0, 2, 3, 3, 1}),
			y:            mat.NewDense(4, 1, []float64{3 + 2, 3 + 1.5, 3 + 3 + 6, 3 + 4.5 + 2}),
			expIntercept: 3,
			expCoef:      []float64{1.5, 2},
		},
		"no intercept": {
			opt:     &OLSOptions{},
			x:       mat.NewDense(3, 1, []float64{1, 2, 3}),
			y:       mat.NewDense(3, 1, []float64{2, 4, 6}),
			expCoef: []float64{2},
		},
		"dependent column zeroed": {
			opt:     &OLSOptions{},
			x:       mat.NewDense(3, 2, []float64{1, 0, 2, 0, 3, 0}),
			y:       mat.NewDense(3, 1, []float64{2, 4, 6}),
			expCoef: []float64{2, 0},
		},
		"target mismatch": {
			x:   mat.NewDense(3, 1, []float64{1, 2, 3}),
			y:   mat.NewDense(2, 1, []float64{2, 4}),
			err: ErrTargetLenMismatch,
		},
		"underdetermined": {
			opt: &OLSOptions{},
			x:   mat.NewDense(1, 2, []float64{1, 2}),
			y:   mat.NewDense(1, 1, []float64{2}),
			err: ErrUnderdetermined,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			model, err := NewOLSRegression(td.opt)
			require.NoError(t, err)

			err = model.Fit(td.x, td.y)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, td.expIntercept, model.Intercept(), 1e-9, "intercept")
			assert.InDeltaSlice(t, td.expCoef, model.Coef(), 1e-9, "coefficients")

			r2, err := model.Score(td.x, td.y)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, r2, 1e-9, "score")
		})
	}
}

func TestOLSPredictMismatch(t *testing.T) {
	model, err := NewOLSRegression(&OLSOptions{})
	require.NoError(t, err)
	require.NoError(t, model.Fit(mat.NewDense(2, 1, []float64{1, 2}), mat.NewDense(2, 1, []float64{1, 2})))

	_, err = model.Predict(mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	assert.ErrorIs(t, err, ErrFeatureLenMismatch)

	_, err = model.Predict(nil)
	assert.ErrorIs(t, err, ErrNoDesignMatrix)
}
