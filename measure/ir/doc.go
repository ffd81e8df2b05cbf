// Package ir analyses room impulse responses.
//
// The decay analysis follows ISO 3382: the Schroeder backward integral of
// the squared response gives the energy decay curve (EDC), and least-squares
// lines over fixed dB ranges of it give the reverberation times
//
//   - EDT: 0 to -10 dB
//   - T20: -5 to -25 dB
//   - T30: -5 to -35 dB
//
// each extrapolated to a 60 dB decay. Every estimate carries the Pearson
// correlation of its fit; their mean, mapped to [0, 1], is the confidence
// of the result. Responses without enough dynamic range produce a result
// with zero confidence and an explanatory Error string rather than a Go
// error.
//
// Octave-band analysis runs the same estimates on each band of the
// 125 Hz..8 kHz room acoustics filter bank.
//
// Energy ratio metrics are available as well:
//
//   - C50, C80: clarity (early-to-late energy ratio)
//   - D50, D80: definition (early energy fraction)
//   - Center time: temporal energy centroid
//
// # Usage
//
//	analysis, err := ir.Analyze(impulseResponse, 48000, ir.DefaultOptions())
//	if t30 := analysis.Broadband.T30.RT60; t30 != nil {
//	    fmt.Printf("T30 = %.2f s (confidence %.2f)\n", *t30, analysis.Broadband.Confidence)
//	}
package ir
