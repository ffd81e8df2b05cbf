// Package window provides analysis windows and edge fades for
// measurement buffers.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeTukey
)

// cosineSum holds the a_k of w(x) = sum a_k cos(2*pi*k*x) per window.
var cosineSum = map[Type][]float64{
	TypeHann:     {0.5, -0.5},
	TypeHamming:  {0.54, -0.46},
	TypeBlackman: {0.42, -0.5, 0.08},
}

type config struct {
	alpha    float64
	periodic bool
}

// Option configures window generation.
type Option func(*config)

// WithAlpha sets the tapered fraction of a Tukey window, within [0, 1].
func WithAlpha(v float64) Option {
	return func(c *config) {
		if v >= 0 && v <= 1 {
			c.alpha = v
		}
	}
}

// WithPeriodic generates the periodic form used for FFT frames instead
// of the symmetric form.
func WithPeriodic() Option {
	return func(c *config) { c.periodic = true }
}

// Generate returns length coefficients of window t.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	cfg := config{alpha: 0.5}
	for _, opt := range opts {
		opt(&cfg)
	}

	span := float64(length - 1)
	if cfg.periodic {
		span = float64(length)
	}

	w := make([]float64, length)
	for i := range w {
		x := 0.5
		if length > 1 {
			x = float64(i) / span
		}

		w[i] = value(t, x, cfg.alpha)
	}

	return w
}

// Apply multiplies buf in place by window t.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 || t == TypeRectangular {
		return
	}

	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// CoherentGain returns the mean coefficient, the amplitude a window
// leaves on a bin-centred sinusoid.
func CoherentGain(w []float64) float64 {
	if len(w) == 0 {
		return 0
	}

	var sum float64
	for _, c := range w {
		sum += c
	}

	return sum / float64(len(w))
}

// FadeInOut applies raised-cosine fades of fadeLen samples to both ends
// of buf in place, limited to half the buffer. The gain at sample i of
// the fade-in is 0.5*(1-cos(pi*i/fadeLen)).
func FadeInOut(buf []float64, fadeLen int) {
	n := len(buf)
	fadeLen = min(fadeLen, n/2)

	for i := range max(fadeLen, 0) {
		g := 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(fadeLen)))
		buf[i] *= g
		buf[n-1-i] *= g
	}
}

func value(t Type, x, alpha float64) float64 {
	if t == TypeTukey {
		return tukey(x, alpha)
	}

	coeffs, ok := cosineSum[t]
	if !ok {
		return 1
	}

	var w float64
	for k, a := range coeffs {
		w += a * math.Cos(2*math.Pi*float64(k)*x)
	}

	return w
}

// tukey is flat in the middle 1-alpha of the span with cosine tapers on
// both sides. alpha 1 gives a Hann window.
func tukey(x, alpha float64) float64 {
	if alpha <= 0 {
		return 1
	}

	edge := math.Min(x, 1-x)
	if edge >= alpha/2 {
		return 1
	}

	return 0.5 * (1 - math.Cos(2*math.Pi*edge/alpha))
}
