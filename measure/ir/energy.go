package ir

import "math"

// Definition computes the definition D(t) at a given time boundary in ms.
//
//	D(t) = ∫₀ᵗ h²(τ)dτ / ∫₀^∞ h²(τ)dτ
//
// Returns a ratio between 0 and 1.
func (a *Analyzer) Definition(ir []float64, timeMs float64) (float64, error) {
	if err := a.check(ir, timeMs); err != nil {
		return 0, err
	}

	return a.definition(ir, timeMs), nil
}

func (a *Analyzer) definition(ir []float64, timeMs float64) float64 {
	early, late := a.split(ir, timeMs)
	if early+late <= 0 {
		return 0
	}

	return early / (early + late)
}

// Clarity computes the clarity C(t) at a given time boundary in ms.
//
//	C(t) = 10*log10( ∫₀ᵗ h²(τ)dτ / ∫ₜ^∞ h²(τ)dτ )
//
// Returns the value in dB, +Inf when there is no late energy.
func (a *Analyzer) Clarity(ir []float64, timeMs float64) (float64, error) {
	if err := a.check(ir, timeMs); err != nil {
		return 0, err
	}

	return a.clarity(ir, timeMs), nil
}

func (a *Analyzer) clarity(ir []float64, timeMs float64) float64 {
	early, late := a.split(ir, timeMs)

	switch {
	case late <= 0:
		return math.Inf(1)
	case early <= 0:
		return math.Inf(-1)
	}

	return 10 * math.Log10(early/late)
}

// split returns the energy before and after the boundary.
func (a *Analyzer) split(ir []float64, timeMs float64) (early, late float64) {
	boundary := int(math.Round(timeMs * 0.001 * a.SampleRate))

	for i, v := range ir {
		if i < boundary {
			early += v * v
		} else {
			late += v * v
		}
	}

	return early, late
}

// CenterTime computes the temporal energy centroid of the impulse response.
//
//	Ts = ∫₀^∞ τ·h²(τ)dτ / ∫₀^∞ h²(τ)dτ
//
// Returns the center time in seconds.
func (a *Analyzer) CenterTime(ir []float64) (float64, error) {
	if len(ir) == 0 {
		return 0, ErrEmptyIR
	}

	if a.SampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	return a.centerTime(ir), nil
}

func (a *Analyzer) centerTime(ir []float64) float64 {
	var numerator, denominator float64

	for i, v := range ir {
		e := v * v
		numerator += float64(i) / a.SampleRate * e
		denominator += e
	}

	if denominator <= 0 {
		return 0
	}

	return numerator / denominator
}

// FindImpulseStart returns the index of the first sample reaching 10% of
// the peak amplitude (-20 dB). Useful for trimming pre-delay silence.
func (a *Analyzer) FindImpulseStart(ir []float64) (int, error) {
	if len(ir) == 0 {
		return 0, ErrEmptyIR
	}

	threshold := 0.1 * math.Abs(ir[findPeak(ir)])
	for i, v := range ir {
		if math.Abs(v) >= threshold {
			return i, nil
		}
	}

	return 0, nil
}

func (a *Analyzer) check(ir []float64, timeMs float64) error {
	if len(ir) == 0 {
		return ErrEmptyIR
	}

	if a.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}

	if timeMs <= 0 {
		return ErrInvalidTime
	}

	return nil
}
