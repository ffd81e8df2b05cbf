// Package conv provides linear convolution and regularised deconvolution.
//
// [Convolve] picks direct time-domain convolution for short kernels and a
// single zero-padded FFT product for longer ones. Both return the full
// linear result of length len(a)+len(b)-1.
//
// [Deconvolve] divides spectra with Wiener-style regularisation. The kernel
// is either the excitation that produced the signal ([KernelExcitation]) or
// a precomputed inverse of it ([KernelInverse]), as used by swept-sine
// impulse response measurement:
//
//	opts := conv.DefaultDeconvOptions()
//	opts.Kernel = conv.KernelInverse
//	ir, err := conv.Deconvolve(recording, inverseFilter, opts)
//
// [SNR] compares a recovered signal against its original in dB.
package conv
