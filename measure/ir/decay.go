package ir

import (
	"github.com/cwbudde/qualia-nss/dsp/core"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// edcFloorDB is the level assigned to zero remaining energy.
const edcFloorDB = -200

// minInteriorPoints is the number of EDC samples required strictly
// between the start and end of a fit range.
const minInteriorPoints = 3

var (
	edtRange = [2]float64{0, -10}
	t20Range = [2]float64{-5, -25}
	t30Range = [2]float64{-5, -35}
)

// EDC is an energy decay curve: Level[i] in dB relative to the total
// energy at Time[i] seconds.
type EDC struct {
	Time  []float64
	Level []float64
}

// Range returns the span in dB between the first and the lowest level.
func (e EDC) Range() float64 {
	if len(e.Level) == 0 {
		return 0
	}

	return e.Level[0] - floats.Min(e.Level)
}

// DecayEstimate is one reverberation time fit over [StartDB, EndDB].
type DecayEstimate struct {
	// RT60 is the fitted slope extrapolated to a 60 dB decay, in seconds.
	// Nil when the range is not reached, has too few points, or does not
	// decay.
	RT60 *float64

	// Correlation is the Pearson coefficient between time and attenuation.
	// A clean decay scores +1.
	Correlation float64

	StartDB float64
	EndDB   float64

	// Confidence is (Correlation+1)/2 for a valid estimate and 0 otherwise.
	Confidence float64
}

// Valid reports whether the estimate produced a reverberation time.
func (d DecayEstimate) Valid() bool { return d.RT60 != nil }

// SchroederIntegral computes the Schroeder backward integration of the
// squared impulse response, returned in dB.
//
// S(t) = 10*log10( ∫_t^∞ h²(τ) dτ / ∫_0^∞ h²(τ) dτ )
//
// Zero remaining energy maps to -200 dB. A silent response yields 0 dB
// throughout.
func (a *Analyzer) SchroederIntegral(ir []float64) ([]float64, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}

	return schroeder(ir), nil
}

func schroeder(ir []float64) []float64 {
	n := len(ir)
	result := make([]float64, n)

	var cumSum float64
	for i := n - 1; i >= 0; i-- {
		cumSum += ir[i] * ir[i]
		result[i] = cumSum
	}

	total := cumSum
	for i := range result {
		if total <= 0 {
			result[i] = 0
			continue
		}

		result[i] = core.EnergyRatioToDB(result[i]/total, edcFloorDB)
	}

	return result
}

func (a *Analyzer) energyDecay(ir []float64) EDC {
	level := schroeder(ir)
	t := make([]float64, len(level))

	for i := range t {
		t[i] = float64(i) / a.SampleRate
	}

	return EDC{Time: t, Level: level}
}

// estimate fits a line to the EDC between the first samples at or below
// startDB and endDB.
func (a *Analyzer) estimate(edc EDC, startDB, endDB float64) DecayEstimate {
	est := DecayEstimate{StartDB: startDB, EndDB: endDB}

	startIdx, endIdx := -1, -1

	for i, v := range edc.Level {
		if startIdx < 0 && v <= startDB {
			startIdx = i
		}

		if startIdx >= 0 && v <= endDB {
			endIdx = i
			break
		}
	}

	if startIdx < 0 || endIdx < 0 || endIdx-startIdx-1 < minInteriorPoints {
		return est
	}

	x := edc.Time[startIdx : endIdx+1]
	y := edc.Level[startIdx : endIdx+1]

	_, slope := stat.LinearRegression(x, y, nil, false)
	if !(slope < 0) {
		return est
	}

	attenuation := make([]float64, len(y))
	floats.ScaleTo(attenuation, -1, y)

	rt := -60 / slope
	est.RT60 = &rt
	est.Correlation = core.Clamp(stat.Correlation(x, attenuation, nil), -1, 1)
	est.Confidence = (est.Correlation + 1) / 2

	return est
}
