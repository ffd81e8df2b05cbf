package biquad

import (
	"math"
	"math/cmplx"
)

// Coefficients of one second-order section with a0 normalised to 1.
//
//	H(z) = (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2)
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Response evaluates H(e^jw) at freqHz.
func (c Coefficients) Response(freqHz, sampleRate float64) complex128 {
	z1 := cmplx.Rect(1, -2*math.Pi*freqHz/sampleRate)
	z2 := z1 * z1

	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2

	return num / den
}

// Chain is a cascade of sections run in Direct Form II Transposed. Each
// section keeps its own two-element delay line between calls to Filter.
type Chain struct {
	coeffs []Coefficients
	z      [][2]float64
}

// NewChain cascades the given coefficient sets in order.
func NewChain(sets ...[]Coefficients) *Chain {
	c := &Chain{}
	for _, set := range sets {
		c.coeffs = append(c.coeffs, set...)
	}

	c.z = make([][2]float64, len(c.coeffs))

	return c
}

// Len returns the number of sections.
func (c *Chain) Len() int { return len(c.coeffs) }

// Filter runs buf through the cascade in place.
func (c *Chain) Filter(buf []float64) {
	for k, s := range c.coeffs {
		z0, z1 := c.z[k][0], c.z[k][1]
		for i, x := range buf {
			y := s.B0*x + z0
			z0 = s.B1*x - s.A1*y + z1
			z1 = s.B2*x - s.A2*y
			buf[i] = y
		}

		c.z[k] = [2]float64{z0, z1}
	}
}

// Reset zeroes every delay line.
func (c *Chain) Reset() {
	clear(c.z)
}

// Response is the product of the section responses at freqHz.
func (c *Chain) Response(freqHz, sampleRate float64) complex128 {
	h := complex(1, 0)
	for _, s := range c.coeffs {
		h *= s.Response(freqHz, sampleRate)
	}

	return h
}

// MagnitudeDB returns 20*log10|H| of the cascade at freqHz.
func (c *Chain) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(c.Response(freqHz, sampleRate)))
}

// ImpulseResponse returns the first n samples of the cascade's impulse
// response. The chain's own delay lines are left untouched.
func (c *Chain) ImpulseResponse(n int) []float64 {
	if n <= 0 {
		return nil
	}

	out := make([]float64, n)
	out[0] = 1

	NewChain(c.coeffs).Filter(out)

	return out
}
