package conv

import (
	"math"
	"math/cmplx"
)

// KernelKind tells [Deconvolve] how to interpret its kernel argument.
type KernelKind int

const (
	// KernelExcitation means the kernel is the excitation x that produced
	// the signal y = x * h. The result is IFFT(Y conj(X) / (|X|^2 + eps)).
	KernelExcitation KernelKind = iota

	// KernelInverse means the kernel is an inverse filter I of the
	// excitation, so X is represented by 1/I. Substituting into the
	// excitation form gives IFFT(Y I / (1 + eps |I|^2)).
	KernelInverse
)

// String returns the kernel kind name.
func (k KernelKind) String() string {
	switch k {
	case KernelExcitation:
		return "excitation"
	case KernelInverse:
		return "inverse"
	default:
		return "unknown"
	}
}

// DefaultEpsilon is the regularisation used when DeconvOptions.Epsilon
// is not positive.
const DefaultEpsilon = 1e-6

// DeconvOptions configures deconvolution behavior.
type DeconvOptions struct {
	// Epsilon is the regularisation added to the power spectrum of the
	// excitation before division.
	Epsilon float64

	// Kernel selects how the kernel argument is interpreted.
	Kernel KernelKind
}

// DefaultDeconvOptions returns default deconvolution options.
func DefaultDeconvOptions() DeconvOptions {
	return DeconvOptions{
		Epsilon: DefaultEpsilon,
		Kernel:  KernelExcitation,
	}
}

// Deconvolve recovers h from y = x * h given either x or an inverse filter
// of x (see [KernelKind]).
//
// Both inputs are zero-padded to NextPowerOf2(len(signal)+len(kernel)-1) so
// the spectral product never wraps around, and the first
// len(signal)+len(kernel)-1 samples of the inverse transform are returned.
// Near-zero kernel bins are bounded by Epsilon and never reported as errors.
func Deconvolve(signal, kernel []float64, opts DeconvOptions) ([]float64, error) {
	if len(signal) == 0 {
		return nil, ErrEmptyInput
	}

	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	eps := opts.Epsilon
	if !(eps > 0) || math.IsInf(eps, 0) {
		eps = DefaultEpsilon
	}

	outLen := len(signal) + len(kernel) - 1

	sy, sk, eng, err := spectra(signal, kernel, outLen)
	if err != nil {
		return nil, err
	}

	for i, k := range sk {
		pow := real(k)*real(k) + imag(k)*imag(k)

		switch opts.Kernel {
		case KernelInverse:
			sy[i] = sy[i] * k / complex(1+eps*pow, 0)
		default:
			sy[i] = sy[i] * cmplx.Conj(k) / complex(pow+eps, 0)
		}
	}

	return inverseReal(eng, sy, outLen)
}

// SNR computes the signal-to-noise ratio in dB between original and recovered signals.
// SNR = 10 * log10(signal_power / noise_power)
// where noise = original - recovered.
func SNR(original, recovered []float64) float64 {
	if len(original) != len(recovered) || len(original) == 0 {
		return math.Inf(-1)
	}

	var signalPower, noisePower float64
	for i := range original {
		signalPower += original[i] * original[i]
		noise := original[i] - recovered[i]
		noisePower += noise * noise
	}

	if noisePower == 0 {
		return math.Inf(1)
	}

	return 10 * math.Log10(signalPower/noisePower)
}
