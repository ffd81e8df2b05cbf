package design

import (
	"math"

	"github.com/cwbudde/qualia-nss/dsp/filter/biquad"
)

const defaultQ = 1 / math.Sqrt2

type response int

const (
	lowpass response = iota
	highpass
)

// Lowpass designs an RBJ cookbook lowpass section at freq (Hz). A
// non-positive q falls back to 1/sqrt(2). Frequencies outside
// (0, Nyquist) yield zero coefficients.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	return cookbook(lowpass, freq, q, sampleRate)
}

// Highpass is the highpass counterpart of [Lowpass].
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	return cookbook(highpass, freq, q, sampleRate)
}

// ButterworthLP returns order/2 lowpass sections forming a Butterworth
// response at freq. Odd orders are rounded up; order <= 0 yields nil.
func ButterworthLP(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	return butterworth(lowpass, freq, order, sampleRate)
}

// ButterworthHP is the highpass counterpart of [ButterworthLP].
func ButterworthHP(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	return butterworth(highpass, freq, order, sampleRate)
}

func butterworth(r response, freq float64, order int, sampleRate float64) []biquad.Coefficients {
	if order <= 0 {
		return nil
	}

	order += order % 2

	// Pole pairs from the real axis outwards: Q_k = 1 / (2 sin((2k+1)pi/2N)).
	sections := make([]biquad.Coefficients, order/2)
	for i := range sections {
		k := len(sections) - 1 - i
		theta := math.Pi * float64(2*k+1) / float64(2*order)
		sections[i] = cookbook(r, freq, 1/(2*math.Sin(theta)), sampleRate)
	}

	return sections
}

func cookbook(r response, freq, q, sampleRate float64) biquad.Coefficients {
	if !finite(sampleRate) || !finite(freq) || freq <= 0 || freq >= sampleRate/2 {
		return biquad.Coefficients{}
	}

	if !finite(q) || q <= 0 {
		q = defaultQ
	}

	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha

	var b0, b1 float64
	switch r {
	case lowpass:
		b1 = (1 - cw) / a0
		b0 = b1 / 2
	case highpass:
		b0 = (1 + cw) / 2 / a0
		b1 = -2 * b0
	}

	return biquad.Coefficients{
		B0: b0,
		B1: b1,
		B2: b0,
		A1: -2 * cw / a0,
		A2: (1 - alpha) / a0,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
