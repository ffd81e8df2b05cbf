// Package biquad runs cascades of second-order IIR sections.
//
// A [Chain] holds the [Coefficients] of each section and its delay line.
// Octave-band filtering in dsp/filter/bank builds one lowpass and one
// highpass chain per band; coefficient design lives in dsp/filter/design.
package biquad
