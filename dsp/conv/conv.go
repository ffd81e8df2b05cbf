package conv

import (
	"errors"
	"fmt"

	"github.com/cwbudde/qualia-nss/dsp/fft"
)

// Errors returned by convolution functions.
var (
	ErrEmptyInput  = errors.New("conv: empty input")
	ErrEmptyKernel = errors.New("conv: empty kernel")
)

// directThreshold is the kernel length up to which Convolve stays in the
// time domain.
const directThreshold = 64

// Direct performs direct time-domain linear convolution of a and b.
// Returns a new slice of length len(a) + len(b) - 1.
func Direct(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}

	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	result := make([]float64, len(a)+len(b)-1)
	for i, av := range a {
		if av == 0 {
			continue
		}

		for j, bv := range b {
			result[i+j] += av * bv
		}
	}

	return result, nil
}

// Convolve performs linear convolution with automatic algorithm selection.
// Kernels up to 64 samples use [Direct]; longer ones use one FFT product
// sized to the next power of two of the full output length.
func Convolve(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}

	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	if len(b) > len(a) {
		a, b = b, a
	}

	if len(b) <= directThreshold {
		return Direct(a, b)
	}

	outLen := len(a) + len(b) - 1

	sa, sb, eng, err := spectra(a, b, outLen)
	if err != nil {
		return nil, err
	}

	for i := range sa {
		sa[i] *= sb[i]
	}

	return inverseReal(eng, sa, outLen)
}

// spectra zero-pads a and b to NextPowerOf2(n) and returns both forward
// transforms together with the engine used.
func spectra(a, b []float64, n int) ([]complex128, []complex128, *fft.Engine, error) {
	eng, err := fft.NewEngine(fft.NextPowerOf2(n))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("conv: %w", err)
	}

	sa := padComplex(a, eng.Size())
	sb := padComplex(b, eng.Size())

	if err := eng.Forward(sa, sa); err != nil {
		return nil, nil, nil, fmt.Errorf("conv: forward transform failed: %w", err)
	}

	if err := eng.Forward(sb, sb); err != nil {
		return nil, nil, nil, fmt.Errorf("conv: forward transform failed: %w", err)
	}

	return sa, sb, eng, nil
}

func inverseReal(eng *fft.Engine, spec []complex128, n int) ([]float64, error) {
	if err := eng.Inverse(spec, spec); err != nil {
		return nil, fmt.Errorf("conv: inverse transform failed: %w", err)
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = real(spec[i])
	}

	return out, nil
}

func padComplex(x []float64, size int) []complex128 {
	out := make([]complex128, size)
	for i, v := range x {
		out[i] = complex(v, 0)
	}

	return out
}
