package fft

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by the FFT engine.
var (
	ErrInvalidSize    = errors.New("fft: size must be a power of two")
	ErrLengthMismatch = errors.New("fft: buffer length does not match engine size")
)

// Engine computes forward and inverse transforms of one fixed size.
type Engine struct {
	size int
	plan *algofft.Plan[complex128]
	buf  []complex128
}

// NewEngine creates an engine for transforms of the given size.
// The size must be a power of two.
func NewEngine(size int) (*Engine, error) {
	if !IsPowerOf2(size) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("fft: failed to create plan: %w", err)
	}

	return &Engine{
		size: size,
		plan: plan,
		buf:  make([]complex128, size),
	}, nil
}

// Size returns the transform size.
func (e *Engine) Size() int { return e.size }

// RealTransform computes the forward FFT of the real signal held in re.
// The input content of im is ignored. On return re and im hold the real
// and imaginary parts of the full (conjugate-symmetric) spectrum.
func (e *Engine) RealTransform(re, im []float64) error {
	if err := e.check(re, im); err != nil {
		return err
	}

	for i, v := range re {
		e.buf[i] = complex(v, 0)
	}

	if err := e.plan.Forward(e.buf, e.buf); err != nil {
		return fmt.Errorf("fft: forward transform failed: %w", err)
	}

	e.split(re, im)

	return nil
}

// CompleteSpectrum rebuilds the redundant upper half of a spectrum from its
// non-redundant bins 0..N/2, so that an inverse transform yields a real
// signal. The imaginary parts of the DC and Nyquist bins are cleared.
func (e *Engine) CompleteSpectrum(re, im []float64) error {
	if err := e.check(re, im); err != nil {
		return err
	}

	n := e.size
	im[0] = 0

	if n < 2 {
		return nil
	}

	half := n / 2
	im[half] = 0

	for k := 1; k < half; k++ {
		re[n-k] = re[k]
		im[n-k] = -im[k]
	}

	return nil
}

// InverseTransform computes the inverse FFT of the spectrum held in re/im.
// The result is scaled by 1/N. On return re holds the time-domain signal
// and im the residual imaginary part, which is zero up to rounding for a
// conjugate-symmetric input.
func (e *Engine) InverseTransform(re, im []float64) error {
	if err := e.check(re, im); err != nil {
		return err
	}

	for i := range re {
		e.buf[i] = complex(re[i], im[i])
	}

	if err := e.plan.Inverse(e.buf, e.buf); err != nil {
		return fmt.Errorf("fft: inverse transform failed: %w", err)
	}

	e.split(re, im)

	return nil
}

// Forward computes the forward FFT of src into dst. Both slices must have
// the engine size; they may alias.
func (e *Engine) Forward(dst, src []complex128) error {
	if len(dst) != e.size || len(src) != e.size {
		return ErrLengthMismatch
	}

	return e.plan.Forward(dst, src)
}

// Inverse computes the normalized inverse FFT of src into dst. Both slices
// must have the engine size; they may alias.
func (e *Engine) Inverse(dst, src []complex128) error {
	if len(dst) != e.size || len(src) != e.size {
		return ErrLengthMismatch
	}

	return e.plan.Inverse(dst, src)
}

func (e *Engine) check(re, im []float64) error {
	if len(re) != e.size || len(im) != e.size {
		return fmt.Errorf("%w: got %d/%d, want %d", ErrLengthMismatch, len(re), len(im), e.size)
	}

	return nil
}

func (e *Engine) split(re, im []float64) {
	for i, c := range e.buf {
		re[i] = real(c)
		im[i] = imag(c)
	}
}

// Magnitude returns sqrt(re^2 + im^2) for each bin.
func Magnitude(re, im []float64) []float64 {
	if len(re) == 0 || len(re) != len(im) {
		return nil
	}

	out := make([]float64, len(re))
	vecmath.Magnitude(out, re, im)

	return out
}

// Power returns re^2 + im^2 for each bin.
func Power(re, im []float64) []float64 {
	if len(re) == 0 || len(re) != len(im) {
		return nil
	}

	out := make([]float64, len(re))
	vecmath.Power(out, re, im)

	return out
}

// IsPowerOf2 reports whether n is a positive power of two.
func IsPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOf2 returns the smallest power of two >= n (1 for n <= 1).
func NextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
