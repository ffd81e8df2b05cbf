// Package fft provides a fixed-size FFT engine over split real/imaginary
// buffers.
//
// The engine wraps a precomputed algo-fft plan. Transform sizes must be
// powers of two; callers zero-pad with [NextPowerOf2] beforehand.
//
// # Usage
//
//	e, err := fft.NewEngine(1024)
//	re := make([]float64, 1024) // time-domain signal
//	im := make([]float64, 1024)
//	_ = e.RealTransform(re, im)    // re/im now hold the full spectrum
//	_ = e.InverseTransform(re, im) // back to the time domain
//
// An [Engine] is bound to the size it was created with and keeps internal
// scratch memory. It is not safe for concurrent use.
package fft
