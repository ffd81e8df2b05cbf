package rta

import (
	"math"

	"github.com/cwbudde/qualia-nss/dsp/core"
	"gonum.org/v1/gonum/floats"
)

// Peak and notch search defaults.
const (
	DefaultPeakThreshold  = -60.0
	DefaultNotchThreshold = -80.0
	DefaultMinDistance    = 5
)

// Comb detection parameters.
const (
	combNotchThreshold = -70.0
	combPeakThreshold  = DefaultPeakThreshold
	combMinDistance    = 10
	combMinNotches     = 3
	combFullNotchCount = 5
	combSpacingTol     = 0.1

	// DetectionThreshold is the confidence above which comb filtering is
	// reported as detected.
	DetectionThreshold = 0.6
)

// Extremum is a local peak or notch of a snapshot.
type Extremum struct {
	Index     int
	Value     float64 // dB
	Frequency float64 // Hz
}

// CombDetection is the outcome of DetectCombFiltering.
type CombDetection struct {
	Detected       bool
	Confidence     float64 // 0..1
	EstimatedDelay float64 // seconds, 1/NotchSpacing
	NotchSpacing   float64 // mean spacing in Hz
	NotchCount     int
	PeakCount      int
	Consistency    float64 // fraction of spacings within 10 % of the mean
	DelayMatch     float64 // 1 when no expected delay is given
}

// FindPeaks returns bins above threshold that are strictly greater than
// every other bin within ±minDistance.
func FindPeaks(spectrum []float64, sampleRate float64, fftSize int, threshold float64, minDistance int) []Extremum {
	return findExtrema(spectrum, sampleRate, fftSize, minDistance, func(v, other float64) bool {
		return v > other
	}, func(v float64) bool { return v > threshold })
}

// FindNotches returns bins below threshold that are strictly smaller than
// every other bin within ±minDistance.
func FindNotches(spectrum []float64, sampleRate float64, fftSize int, threshold float64, minDistance int) []Extremum {
	return findExtrema(spectrum, sampleRate, fftSize, minDistance, func(v, other float64) bool {
		return v < other
	}, func(v float64) bool { return v < threshold })
}

// findExtrema scans bins minDistance..len-minDistance-1 so that every
// candidate has a full neighbourhood.
func findExtrema(spectrum []float64, sampleRate float64, fftSize, minDistance int,
	beats func(v, other float64) bool, passes func(v float64) bool,
) []Extremum {
	if minDistance < 1 {
		minDistance = 1
	}

	var out []Extremum

	for i := minDistance; i < len(spectrum)-minDistance; i++ {
		v := spectrum[i]
		if !passes(v) {
			continue
		}

		extreme := true

		for j := i - minDistance; j <= i+minDistance; j++ {
			if j != i && !beats(v, spectrum[j]) {
				extreme = false
				break
			}
		}

		if extreme {
			out = append(out, Extremum{
				Index:     i,
				Value:     v,
				Frequency: binFrequency(i, sampleRate, fftSize),
			})
		}
	}

	return out
}

// DetectCombFiltering looks for evenly spaced notches in spectrum. An
// expectedDelay in seconds > 0 scores how well the spacing matches
// 1/expectedDelay; otherwise the delay match is 1.
func DetectCombFiltering(spectrum []float64, sampleRate float64, fftSize int, expectedDelay float64) CombDetection {
	notches := FindNotches(spectrum, sampleRate, fftSize, combNotchThreshold, combMinDistance)
	peaks := FindPeaks(spectrum, sampleRate, fftSize, combPeakThreshold, combMinDistance)

	res := CombDetection{
		NotchCount: len(notches),
		PeakCount:  len(peaks),
	}

	if len(notches) < combMinNotches {
		return res
	}

	spacings := make([]float64, len(notches)-1)
	for i := range spacings {
		spacings[i] = notches[i+1].Frequency - notches[i].Frequency
	}

	mean := floats.Sum(spacings) / float64(len(spacings))
	if mean <= 0 {
		return res
	}

	consistent := 0

	for _, s := range spacings {
		if math.Abs(s-mean) <= combSpacingTol*mean {
			consistent++
		}
	}

	res.NotchSpacing = mean
	res.EstimatedDelay = 1 / mean
	res.Consistency = float64(consistent) / float64(len(spacings))
	res.DelayMatch = 1

	if expectedDelay > 0 && !math.IsInf(expectedDelay, 0) {
		expected := 1 / expectedDelay
		res.DelayMatch = core.Clamp(1-math.Abs(mean-expected)/expected, 0, 1)
	}

	countFactor := math.Min(1, float64(len(notches))/combFullNotchCount)
	res.Confidence = core.Clamp(res.Consistency*res.DelayMatch*countFactor, 0, 1)
	res.Detected = res.Confidence > DetectionThreshold

	return res
}

func binFrequency(i int, sampleRate float64, fftSize int) float64 {
	if fftSize <= 0 {
		return 0
	}

	return float64(i) * sampleRate / float64(fftSize)
}
