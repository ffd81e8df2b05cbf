// Package sweep generates exponential sine sweeps and their analytic
// inverse filters for swept-sine impulse response measurement.
//
// An exponential sweep spends equal time per octave. Convolving a recording
// of the sweep with its inverse filter yields the linear impulse response at
// a lag of one sweep length, with harmonic distortion products arriving
// earlier at offsets given by [LogSweep.HarmonicOffset]:
//
//	s := &sweep.LogSweep{StartFreq: 20, EndFreq: 20000, Duration: 5, SampleRate: 48000}
//	excitation, _ := s.Generate()
//	// ... play excitation through the system, record response ...
//	ir, _ := s.Deconvolve(response)
//
// The [impulse] package performs the complete extraction (preprocessing,
// onset search, windowing) on top of [LogSweep.InverseFilter].
//
// [impulse]: github.com/cwbudde/qualia-nss/measure/impulse
package sweep
