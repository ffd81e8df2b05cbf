package core

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Mean returns the arithmetic mean of x, or 0 for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	return floats.Sum(x) / float64(len(x))
}

// RemoveDC returns a copy of x with its mean subtracted.
func RemoveDC(x []float64) []float64 {
	out := append([]float64(nil), x...)
	floats.AddConst(-Mean(x), out)

	return out
}

// MaxAbs returns the largest absolute value in x and its index.
// Both are 0 for an empty or all-zero slice.
func MaxAbs(x []float64) (float64, int) {
	peak, idx := 0.0, 0
	for i, v := range x {
		if a := math.Abs(v); a > peak {
			peak, idx = a, i
		}
	}

	return peak, idx
}

// NormalizePeak scales x in place to a peak of 1 and returns the peak
// found before scaling. An all-zero x is left alone.
func NormalizePeak(x []float64) float64 {
	peak, _ := MaxAbs(x)
	if peak > 0 {
		floats.Scale(1/peak, x)
	}

	return peak
}

// Energy returns the sum of squares of x.
func Energy(x []float64) float64 {
	return floats.Dot(x, x)
}
