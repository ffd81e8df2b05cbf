// Package time summarises the level of time-domain sample buffers.
//
// It is used to sanity-check measurement recordings before deconvolution:
// a clipped or nearly silent capture produces an impulse response that is
// not worth analysing.
package time

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultClipThreshold is the absolute sample value at or above which a
// sample counts as clipped.
const DefaultClipThreshold = 0.999

// silenceDB is reported for the dB fields of a silent buffer.
const silenceDB = -200.0

// Stats holds level statistics of a sample buffer.
type Stats struct {
	Length        int
	DC            float64 // mean
	RMS           float64
	RMSdB         float64
	Peak          float64 // max |x|
	PeakPos       int
	PeakdB        float64
	CrestFactor   float64 // peak / RMS (linear), 0 for silence
	CrestFactorDB float64
	Clipped       int // samples with |x| >= DefaultClipThreshold
	ZeroCrossings int
}

// Calculate computes all statistics for signal. The dB fields of a silent
// or empty buffer are floored at -200 dB.
func Calculate(signal []float64) Stats {
	s := Stats{
		Length:        len(signal),
		RMSdB:         silenceDB,
		PeakdB:        silenceDB,
		CrestFactorDB: 0,
	}

	if len(signal) == 0 {
		return s
	}

	s.DC = DC(signal)
	s.RMS = RMS(signal)
	s.Peak, s.PeakPos = peak(signal)
	s.Clipped = ClipCount(signal, DefaultClipThreshold)
	s.ZeroCrossings = ZeroCrossings(signal)

	if s.RMS > 0 {
		s.RMSdB = toDB(s.RMS)
		s.PeakdB = toDB(s.Peak)
		s.CrestFactor = s.Peak / s.RMS
		s.CrestFactorDB = toDB(s.CrestFactor)
	}

	return s
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return math.Sqrt(floats.Dot(signal, signal) / float64(len(signal)))
}

// DC returns the mean of the signal.
func DC(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return floats.Sum(signal) / float64(len(signal))
}

// Peak returns the largest absolute sample value.
func Peak(signal []float64) float64 {
	p, _ := peak(signal)
	return p
}

// CrestFactor returns peak / RMS, or 0 for a silent signal.
func CrestFactor(signal []float64) float64 {
	rms := RMS(signal)
	if rms == 0 {
		return 0
	}

	return Peak(signal) / rms
}

// ClipCount returns the number of samples whose magnitude is at or above
// threshold.
func ClipCount(signal []float64, threshold float64) int {
	n := 0
	for _, x := range signal {
		if math.Abs(x) >= threshold {
			n++
		}
	}

	return n
}

// ZeroCrossings counts sign changes between consecutive samples.
func ZeroCrossings(signal []float64) int {
	n := 0
	for i := 1; i < len(signal); i++ {
		if signal[i-1]*signal[i] < 0 {
			n++
		}
	}

	return n
}

func peak(signal []float64) (float64, int) {
	if len(signal) == 0 {
		return 0, 0
	}

	hi, lo := floats.MaxIdx(signal), floats.MinIdx(signal)
	if math.Abs(signal[lo]) > math.Abs(signal[hi]) {
		return math.Abs(signal[lo]), lo
	}

	return math.Abs(signal[hi]), hi
}

func toDB(v float64) float64 {
	return 20 * math.Log10(v)
}
