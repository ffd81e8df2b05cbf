// Package thd measures harmonic distortion from an exponential sweep
// measurement.
//
// Deconvolving the response of a weakly non-linear system to an
// exponential sweep separates the linear impulse response from the
// responses of each harmonic, which arrive earlier by a fixed offset (see
// sweep.LogSweep.HarmonicOffset). The energy of each harmonic response
// relative to the linear one gives the distortion level of that harmonic
// over the band of the sweep.
package thd
