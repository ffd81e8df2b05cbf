package sweep

import (
	"errors"
	"math"

	"github.com/cwbudde/qualia-nss/dsp/conv"
)

// Errors returned by sweep functions.
var (
	ErrInvalidFrequency  = errors.New("sweep: frequency must be positive")
	ErrInvalidDuration   = errors.New("sweep: duration must be positive")
	ErrInvalidSampleRate = errors.New("sweep: sample rate must be positive")
	ErrFrequencyOrder    = errors.New("sweep: start frequency must be less than end frequency")
	ErrNyquist           = errors.New("sweep: end frequency must not exceed Nyquist")
	ErrEmptyResponse     = errors.New("sweep: response signal is empty")
	ErrMaxHarmonic       = errors.New("sweep: max harmonic must be >= 2")
)

// LogSweep describes an exponential sine sweep.
type LogSweep struct {
	StartFreq  float64 // start frequency in Hz
	EndFreq    float64 // end frequency in Hz
	Duration   float64 // sweep duration in seconds
	SampleRate float64 // sample rate in Hz
}

// Validate checks that the LogSweep parameters are valid.
func (s *LogSweep) Validate() error {
	if s.StartFreq <= 0 || s.EndFreq <= 0 {
		return ErrInvalidFrequency
	}

	if s.StartFreq >= s.EndFreq {
		return ErrFrequencyOrder
	}

	if s.Duration <= 0 {
		return ErrInvalidDuration
	}

	if s.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}

	if s.EndFreq > s.SampleRate/2 {
		return ErrNyquist
	}

	return nil
}

// Samples returns the number of samples in the sweep.
func (s *LogSweep) Samples() int {
	return int(math.Round(s.Duration * s.SampleRate))
}

func (s *LogSweep) lnRatio() float64 {
	return math.Log(s.EndFreq / s.StartFreq)
}

// instFreq returns the instantaneous frequency at time t.
func (s *LogSweep) instFreq(t float64) float64 {
	return s.StartFreq * math.Exp(t/s.Duration*s.lnRatio())
}

// Generate creates the sweep signal.
//
// The instantaneous frequency rises exponentially,
// f(t) = f1 * exp(t/T * ln(f2/f1)), which integrates to
//
//	x(t) = sin(2*pi * f1 * T / ln(f2/f1) * (exp(t/T * ln(f2/f1)) - 1))
func (s *LogSweep) Generate() ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	out := make([]float64, s.Samples())
	k := 2 * math.Pi * s.StartFreq * s.Duration / s.lnRatio()

	for i := range out {
		t := float64(i) / s.SampleRate
		out[i] = math.Sin(k * (math.Exp(t/s.Duration*s.lnRatio()) - 1))
	}

	return out, nil
}

// InverseFilter returns the time-reversed sweep weighted by f1/f(t), which
// compensates the sweep's pink energy distribution.
//
// The filter is scaled so that convolving it with the unmodified sweep
// yields exactly 1 at lag Samples()-1.
func (s *LogSweep) InverseFilter() ([]float64, error) {
	x, err := s.Generate()
	if err != nil {
		return nil, err
	}

	n := len(x)
	inv := make([]float64, n)

	var gain float64
	for i := range inv {
		j := n - 1 - i
		amp := s.StartFreq / s.instFreq(float64(j)/s.SampleRate)
		inv[i] = x[j] * amp
		gain += x[j] * inv[i]
	}

	if gain > 0 {
		for i := range inv {
			inv[i] /= gain
		}
	}

	return inv, nil
}

// HarmonicOffset returns how many seconds before the linear impulse
// response the k-th harmonic distortion response appears after
// deconvolution: T * ln(k) / ln(f2/f1). It returns 0 for k < 1.
func (s *LogSweep) HarmonicOffset(k int) float64 {
	if k < 1 || s.StartFreq <= 0 || s.EndFreq <= s.StartFreq {
		return 0
	}

	return s.Duration * math.Log(float64(k)) / s.lnRatio()
}

// Deconvolve convolves a recorded response with the inverse filter.
// The linear impulse response starts at index Samples()-1 of the result,
// which has length len(response)+Samples()-1.
func (s *LogSweep) Deconvolve(response []float64) ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	if len(response) == 0 {
		return nil, ErrEmptyResponse
	}

	inv, err := s.InverseFilter()
	if err != nil {
		return nil, err
	}

	return conv.Convolve(response, inv)
}

// ExtractHarmonicIRs deconvolves the response and cuts out the linear
// impulse response followed by the harmonic responses H2..HmaxHarmonic.
//
// Each segment is centred on its arrival lag and spans half the distance
// to the neighbouring harmonic on either side.
func (s *LogSweep) ExtractHarmonicIRs(response []float64, maxHarmonic int) ([][]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	if maxHarmonic < 2 {
		return nil, ErrMaxHarmonic
	}

	deconv, err := s.Deconvolve(response)
	if err != nil {
		return nil, err
	}

	main := s.Samples() - 1
	centers := make([]int, maxHarmonic+1)

	for k := 1; k <= maxHarmonic; k++ {
		centers[k] = main - int(math.Round(s.HarmonicOffset(k)*s.SampleRate))
	}

	results := make([][]float64, maxHarmonic)

	for k := 1; k <= maxHarmonic; k++ {
		var halfWidth int
		if k < maxHarmonic {
			halfWidth = (centers[k] - centers[k+1]) / 2
		} else {
			halfWidth = (centers[k-1] - centers[k]) / 2
		}

		halfWidth = max(halfWidth, 1)
		start := max(centers[k]-halfWidth, 0)
		end := min(centers[k]+halfWidth, len(deconv))

		if end <= start {
			results[k-1] = []float64{0}
			continue
		}

		seg := make([]float64, end-start)
		copy(seg, deconv[start:end])
		results[k-1] = seg
	}

	return results, nil
}
