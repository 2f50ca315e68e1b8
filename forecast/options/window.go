package options

import "gonum.org/v1/gonum/dsp/window"

const (
	WindowBartlettHann = "bartlett_hann"
	WindowBlackman     = "blackman"
	WindowHamming      = "hamming"
	WindowHann         = "hann"
	WindowRectangular  = "rectangular"
	WindowSine         = "sine"
	WindowTriangular   = "triangular"
	WindowTukey        = "tukey"
)

var WindowParamTukeyAlpha = 0.95

// WindowFunc returns the window function used to shape event masks. Unknown names fall back
// to a rectangular window.
func WindowFunc(name string) func(seq []float64) []float64 {
	switch name {
	case WindowBartlettHann:
		return window.BartlettHann
	case WindowBlackman:
		return window.Blackman
	case WindowHamming:
		return window.Hamming
	case WindowHann:
		return window.Hann
	case WindowSine:
		return window.Sine
	case WindowTriangular:
		return window.Triangular
	case WindowTukey:
		return func(seq []float64) []float64 {
			return window.Tukey{Alpha: WindowParamTukeyAlpha}.Transform(seq)
		}
	}
	return window.Rectangular
}
