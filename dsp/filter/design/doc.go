// Package design computes biquad coefficients for the band-splitting
// filters used by the measurement packages.
//
// Second-order sections follow the RBJ Audio EQ Cookbook formulas; higher
// orders are built as Butterworth cascades whose per-section quality factors
// are spread over the Butterworth pole circle.
package design
