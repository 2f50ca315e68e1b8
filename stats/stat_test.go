package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectOutliers(t *testing.T) {
	testData := map[string]struct {
		y        []float64
		lower    float64
		upper    float64
		tukey    float64
		expected []int
		err      error
	}{
		"single spike": {
			y:        []float64{1, 2, 1, 2, 1, 50, 2, 1, 2, 1},
			lower:    0.1,
			upper:    0.9,
			tukey:    1.0,
			expected: []int{5},
		},
		"nans ignored": {
			y:     []float64{1, math.NaN(), 1, 1},
			lower: 0.1,
			upper: 0.9,
		},
		"all nan": {
			y:     []float64{math.NaN()},
			lower: 0.1,
			upper: 0.9,
			err:   ErrNoData,
		},
		"inverted percentiles": {
			y:     []float64{1, 2},
			lower: 0.9,
			upper: 0.1,
			err:   ErrInvalidPercentile,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := DetectOutliers(td.y, td.lower, td.upper, td.tukey)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestRollingStdDev(t *testing.T) {
	res, err := RollingStdDev([]float64{1, 1, 1, 3, math.NaN(), math.NaN()}, 2)
	require.NoError(t, err)
	require.Len(t, res, 5)
	assert.Equal(t, 0.0, res[0])
	assert.InDelta(t, math.Sqrt2, res[2], 1e-9)
	assert.Equal(t, 0.0, res[3])
	assert.True(t, math.IsNaN(res[4]))

	_, err = RollingStdDev([]float64{1}, 2)
	assert.ErrorIs(t, err, ErrWindowTooLarge)
}

func TestNewScores(t *testing.T) {
	s, err := NewScores([]float64{1, 2, math.NaN()}, []float64{1, 4, 3})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, s.MSE, 1e-9)
	assert.InDelta(t, 0.25, s.MAPE, 1e-9)

	_, err = NewScores([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrResLenMismatch)
}
