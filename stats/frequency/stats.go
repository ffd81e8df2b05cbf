// Package frequency computes spectral shape descriptors and spectrum
// comparisons over analyser snapshots.
//
// A snapshot holds the fftSize/2 non-redundant bins of a magnitude
// spectrum, starting at DC, so the frequency of bin i is
//
//	f_i = i * sampleRate / (2 * len(magnitude))
//
// All descriptors expect linear magnitudes, not dB.
package frequency

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Errors returned by spectrum comparisons.
var (
	ErrEmpty          = errors.New("frequency: empty spectrum")
	ErrLengthMismatch = errors.New("frequency: spectra differ in length")
)

// DefaultRolloff is the energy fraction used by [Calculate] for Rolloff.
const DefaultRolloff = 0.85

// Stats holds frequency-domain statistics computed from a magnitude spectrum.
type Stats struct {
	BinCount int
	Sum      float64 // sum of magnitudes
	Max      float64
	MaxBin   int
	Min      float64
	MinBin   int
	Average  float64
	Energy   float64 // sum of squared magnitudes
	Power    float64 // Energy / BinCount
	// Spectral shape descriptors
	Centroid  float64 // spectral centroid (Hz)
	Spread    float64 // spectral spread (Hz)
	Flatness  float64 // spectral flatness (Wiener entropy), 0..1
	Rolloff   float64 // frequency below which 85% energy (Hz)
	Bandwidth float64 // 3 dB bandwidth around peak (Hz)
}

// binFreq returns the frequency in Hz of bin i of a snapshot with binCount
// bins.
func binFreq(i int, sampleRate float64, binCount int) float64 {
	return float64(i) * sampleRate / float64(2*binCount)
}

// Calculate computes all statistics from a linear magnitude snapshot.
func Calculate(magnitude []float64, sampleRate float64) Stats {
	n := len(magnitude)
	if n == 0 {
		return Stats{}
	}

	s := Stats{
		BinCount: n,
		Sum:      floats.Sum(magnitude),
		MaxBin:   floats.MaxIdx(magnitude),
		MinBin:   floats.MinIdx(magnitude),
		Energy:   floats.Dot(magnitude, magnitude),
	}
	s.Max = magnitude[s.MaxBin]
	s.Min = magnitude[s.MinBin]
	s.Average = s.Sum / float64(n)
	s.Power = s.Energy / float64(n)

	s.Centroid = centroid(magnitude, sampleRate, s.Sum)
	s.Spread = spread(magnitude, sampleRate, s.Centroid, s.Sum)
	s.Flatness = Flatness(magnitude)
	s.Rolloff = rolloff(magnitude, sampleRate, DefaultRolloff, s.Energy)
	s.Bandwidth = Bandwidth(magnitude, sampleRate)

	return s
}

// Centroid returns the spectral centroid in Hz.
//
//	centroid = sum(f_i * |X_i|) / sum(|X_i|)
func Centroid(magnitude []float64, sampleRate float64) float64 {
	return centroid(magnitude, sampleRate, floats.Sum(magnitude))
}

func centroid(magnitude []float64, sampleRate, sumMag float64) float64 {
	if len(magnitude) == 0 || sumMag == 0 {
		return 0
	}

	var weighted float64
	for i, v := range magnitude {
		weighted += binFreq(i, sampleRate, len(magnitude)) * v
	}

	return weighted / sumMag
}

// Spread returns the magnitude-weighted standard deviation of frequency
// around the centroid, in Hz.
func Spread(magnitude []float64, sampleRate float64) float64 {
	sum := floats.Sum(magnitude)
	return spread(magnitude, sampleRate, centroid(magnitude, sampleRate, sum), sum)
}

func spread(magnitude []float64, sampleRate, cent, sumMag float64) float64 {
	if len(magnitude) == 0 || sumMag == 0 {
		return 0
	}

	var weightedSq float64
	for i, v := range magnitude {
		d := binFreq(i, sampleRate, len(magnitude)) - cent
		weightedSq += d * d * v
	}

	return math.Sqrt(weightedSq / sumMag)
}

// Flatness returns the spectral flatness (Wiener entropy) in the range 0..1.
//
//	Flatness = exp(mean(log(|X_i|))) / mean(|X_i|)
//
// The DC bin is excluded. Any zero bin makes the geometric mean, and so the
// flatness, zero.
func Flatness(magnitude []float64) float64 {
	if len(magnitude) < 2 {
		return 0
	}

	bins := magnitude[1:]

	var sumLog float64
	for _, v := range bins {
		if v <= 0 {
			return 0
		}

		sumLog += math.Log(v)
	}

	meanLin := floats.Sum(bins) / float64(len(bins))

	return math.Exp(sumLog/float64(len(bins))) / meanLin
}

// Rolloff returns the frequency below which the given fraction (0..1) of
// the spectral energy lies. Energy is the sum of squared magnitudes.
func Rolloff(magnitude []float64, sampleRate, fraction float64) float64 {
	return rolloff(magnitude, sampleRate, fraction, floats.Dot(magnitude, magnitude))
}

func rolloff(magnitude []float64, sampleRate, fraction, total float64) float64 {
	n := len(magnitude)
	if n == 0 || total == 0 {
		return 0
	}

	threshold := fraction * total

	var cum float64
	for i, v := range magnitude {
		cum += v * v
		if cum >= threshold {
			return binFreq(i, sampleRate, n)
		}
	}

	return binFreq(n-1, sampleRate, n)
}

// Bandwidth returns the 3 dB bandwidth around the spectral peak in Hz,
// interpolating linearly between bins at the crossings.
func Bandwidth(magnitude []float64, sampleRate float64) float64 {
	n := len(magnitude)
	if n < 2 {
		return 0
	}

	peakBin := floats.MaxIdx(magnitude)
	peakVal := magnitude[peakBin]
	if peakVal <= 0 {
		return 0
	}

	threshold := peakVal / math.Sqrt2

	lower := binFreq(0, sampleRate, n)
	for i := peakBin; i >= 1; i-- {
		if magnitude[i-1] <= threshold && magnitude[i] > threshold {
			lower = interpFreq(i-1, magnitude[i-1], magnitude[i], threshold, sampleRate, n)
			break
		}
	}

	upper := binFreq(n-1, sampleRate, n)
	for i := peakBin; i < n-1; i++ {
		if magnitude[i+1] <= threshold && magnitude[i] > threshold {
			upper = interpFreq(i, magnitude[i], magnitude[i+1], threshold, sampleRate, n)
			break
		}
	}

	return math.Max(upper-lower, 0)
}

// interpFreq finds where the magnitude crosses threshold between binLow
// and binLow+1.
func interpFreq(binLow int, magLow, magHigh, threshold, sampleRate float64, binCount int) float64 {
	fLow := binFreq(binLow, sampleRate, binCount)
	fHigh := binFreq(binLow+1, sampleRate, binCount)

	if magHigh == magLow {
		return (fLow + fHigh) / 2
	}

	return fLow + (threshold-magLow)/(magHigh-magLow)*(fHigh-fLow)
}

// MSE returns the mean squared difference between two spectra.
func MSE(a, b []float64) (float64, error) {
	if err := checkPair(a, b); err != nil {
		return 0, err
	}

	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}

	return sum / float64(len(a)), nil
}

// Correlation returns the Pearson correlation of two spectra. It is 0 when
// either spectrum is constant.
func Correlation(a, b []float64) (float64, error) {
	if err := checkPair(a, b); err != nil {
		return 0, err
	}

	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) {
		return 0, nil
	}

	return r, nil
}

func checkPair(a, b []float64) error {
	if len(a) == 0 || len(b) == 0 {
		return ErrEmpty
	}

	if len(a) != len(b) {
		return ErrLengthMismatch
	}

	return nil
}
