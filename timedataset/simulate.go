package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// GenerateDaily returns n consecutive days starting at start
func GenerateDaily(start time.Time, n int) []time.Time {
	t := make([]time.Time, n)
	start = Midnight(start)
	for i := range t {
		t[i] = start.AddDate(0, 0, i)
	}
	return t
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make(Series, n)
	for i := range y {
		y[i] = val
	}
	return y
}

func GenerateWaveY(t []time.Time, amp, periodSec, order, timeOffset float64) Series {
	y := make(Series, len(t))
	for i, tPnt := range t {
		y[i] = amp * math.Sin(2.0*math.Pi*order/periodSec*(float64(tPnt.Unix())+timeOffset))
	}
	return y
}

// GenerateNoise returns gaussian noise with the given scale. The seed makes fixtures
// reproducible.
func GenerateNoise(n int, scale float64, seed uint64) Series {
	rng := rand.New(rand.NewPCG(seed, seed))
	y := make(Series, n)
	for i := range y {
		y[i] = rng.NormFloat64() * scale
	}
	return y
}

// GenerateChange returns a step of bias plus a slope per day from chpt onwards
func GenerateChange(t []time.Time, chpt time.Time, bias, slopePerDay float64) Series {
	y := make(Series, len(t))
	for i, tPnt := range t {
		if !tPnt.Before(chpt) {
			y[i] = bias + slopePerDay*tPnt.Sub(chpt).Hours()/24.0
		}
	}
	return y
}
