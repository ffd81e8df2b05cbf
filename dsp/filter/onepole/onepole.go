// Package onepole provides a first-order DC-blocking high-pass filter.
//
// The filter implements
//
//	y[n] = alpha * (y[n-1] + x[n] - x[n-1])
//
// which has a zero at DC and a pole at alpha. With alpha = 0.999 the -3 dB
// corner sits near 7.6 Hz at 48 kHz, removing sub-audio rumble without the
// ringing of a steep high-pass.
package onepole

import "math"

// DefaultAlpha is the pole radius used when none is given.
const DefaultAlpha = 0.999

// Highpass is a one-pole, one-zero DC blocker with internal state.
type Highpass struct {
	alpha float64
	x1    float64
	y1    float64
}

// NewHighpass creates a high-pass with the given pole radius. Values
// outside (0, 1) fall back to DefaultAlpha.
func NewHighpass(alpha float64) *Highpass {
	if alpha <= 0 || alpha >= 1 || math.IsNaN(alpha) {
		alpha = DefaultAlpha
	}

	return &Highpass{alpha: alpha}
}

// AlphaForCutoff returns the pole radius giving an approximate -3 dB corner
// at cutoffHz.
func AlphaForCutoff(cutoffHz, sampleRate float64) float64 {
	if cutoffHz <= 0 || sampleRate <= 0 {
		return DefaultAlpha
	}

	rc := 1 / (2 * math.Pi * cutoffHz)
	dt := 1 / sampleRate

	return rc / (rc + dt)
}

// Alpha returns the pole radius.
func (h *Highpass) Alpha() float64 { return h.alpha }

// ProcessSample filters one sample.
func (h *Highpass) ProcessSample(x float64) float64 {
	y := h.alpha * (h.y1 + x - h.x1)
	h.x1 = x
	h.y1 = y

	return y
}

// ProcessBlock filters buf in place.
func (h *Highpass) ProcessBlock(buf []float64) {
	a, x1, y1 := h.alpha, h.x1, h.y1
	for i, x := range buf {
		y := a * (y1 + x - x1)
		x1, y1 = x, y
		buf[i] = y
	}

	h.x1, h.y1 = x1, y1
}

// Reset clears the filter state.
func (h *Highpass) Reset() {
	h.x1 = 0
	h.y1 = 0
}
