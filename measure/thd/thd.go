package thd

import (
	"errors"
	"math"

	"github.com/cwbudde/qualia-nss/dsp/core"
	"github.com/cwbudde/qualia-nss/measure/sweep"
)

// DefaultMaxHarmonic is the highest harmonic analysed by FromSweep when
// maxHarmonic is 0.
const DefaultMaxHarmonic = 5

// Errors returned by the analysis functions.
var (
	ErrTooFewResponses = errors.New("thd: need the linear and at least one harmonic response")
	ErrNoLinearEnergy  = errors.New("thd: linear response has no energy")
)

// Result holds harmonic distortion figures as amplitude ratios relative to
// the linear response.
type Result struct {
	// Harmonics[i] is the level of harmonic i+2.
	Harmonics []float64
	THD       float64
	THDdB     float64
	OddHD     float64 // H3, H5, ...
	EvenHD    float64 // H2, H4, ...
}

// FromHarmonicIRs computes distortion figures from separated responses:
// irs[0] is the linear impulse response, irs[k-1] that of harmonic k.
func FromHarmonicIRs(irs [][]float64) (Result, error) {
	if len(irs) < 2 {
		return Result{}, ErrTooFewResponses
	}

	linear := core.Energy(irs[0])
	if linear == 0 {
		return Result{}, ErrNoLinearEnergy
	}

	res := Result{Harmonics: make([]float64, len(irs)-1)}

	var total, odd, even float64

	for i, h := range irs[1:] {
		ratio := core.Energy(h) / linear
		res.Harmonics[i] = math.Sqrt(ratio)
		total += ratio

		if (i+2)%2 == 0 {
			even += ratio
		} else {
			odd += ratio
		}
	}

	res.THD = math.Sqrt(total)
	res.THDdB = core.EnergyRatioToDB(total, -200)
	res.OddHD = math.Sqrt(odd)
	res.EvenHD = math.Sqrt(even)

	return res, nil
}

// FromSweep deconvolves the response to s and analyses harmonics 2 to
// maxHarmonic (DefaultMaxHarmonic when 0).
func FromSweep(s *sweep.LogSweep, response []float64, maxHarmonic int) (Result, error) {
	if maxHarmonic == 0 {
		maxHarmonic = DefaultMaxHarmonic
	}

	irs, err := s.ExtractHarmonicIRs(response, maxHarmonic)
	if err != nil {
		return Result{}, err
	}

	return FromHarmonicIRs(irs)
}
