package spectrum

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Errors returned by SmoothFractionalOctave.
var (
	ErrEmptyInput     = errors.New("spectrum: empty input")
	ErrLengthMismatch = errors.New("spectrum: length mismatch")
	ErrFraction       = errors.New("spectrum: octave fraction must be > 0")
	ErrFrequencyAxis  = errors.New("spectrum: frequencies must be positive and strictly increasing")
)

// SmoothFractionalOctave averages values over a 1/fraction-octave band
// centred on each frequency. Smoothing dB values averages in the log
// domain, which is the usual display convention.
func SmoothFractionalOctave(freqHz, values []float64, fraction int) ([]float64, error) {
	if len(freqHz) == 0 || len(values) == 0 {
		return nil, ErrEmptyInput
	}

	if len(freqHz) != len(values) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(freqHz), len(values))
	}

	if fraction <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrFraction, fraction)
	}

	for i, f := range freqHz {
		if f <= 0 || (i > 0 && f <= freqHz[i-1]) {
			return nil, fmt.Errorf("%w: index %d", ErrFrequencyAxis, i)
		}
	}

	// prefix[k] is the sum of values[:k].
	prefix := make([]float64, len(values)+1)
	for i, v := range values {
		prefix[i+1] = prefix[i] + v
	}

	out := make([]float64, len(values))
	halfBand := math.Pow(2, 1/(2*float64(fraction)))

	for i, f := range freqHz {
		lo := sort.SearchFloat64s(freqHz, f/halfBand)
		hi := sort.Search(len(freqHz), func(k int) bool { return freqHz[k] > f*halfBand })
		out[i] = (prefix[hi] - prefix[lo]) / float64(hi-lo)
	}

	return out, nil
}
