// Package impulse extracts room impulse responses from swept-sine
// recordings.
//
// [Extract] runs the full chain on a recording and its reference signal:
//
//  1. DC removal and a one-pole high-pass on both inputs ([Preprocess]).
//  2. Regularised FFT deconvolution ([Deconvolve]).
//  3. Onset search on 1 ms short-time energy ([FindOnset]).
//  4. A windowed excerpt starting a little after the onset, with
//     raised-cosine edge fades.
//  5. Peak normalisation.
//
// The reference is either the analytic inverse filter of the sweep
// ([ReferenceInverseFilter], the default) or the excitation itself
// ([ReferenceExcitation]). With an inverse filter the direct sound appears
// one sweep length into the deconvolved signal; with the excitation it
// appears at lag zero.
//
// Recoverable conditions never become errors: a missing onset falls back
// to index 0 and a window past the end of the data yields zeros.
package impulse
