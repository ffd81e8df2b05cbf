// Package rta analyses frequency-domain snapshots from a real-time analyser.
//
// A snapshot is a dB magnitude array of fftSize/2 bins; bin i lies at
// i*sampleRate/fftSize Hz. [Analyzer] keeps the session state of a live
// display: the current frame, a peak-hold trace that falls slowly once no
// new peak has arrived for a hold time, an exponential average and a
// bounded history. The free functions [FindPeaks], [FindNotches] and
// [DetectCombFiltering] work on any snapshot.
//
// Comb filtering, the interference of a signal with a delayed copy of
// itself, shows up as evenly spaced notches. DetectCombFiltering scores the
// regularity of the notch spacing, its agreement with an expected delay and
// the number of notches, and multiplies the three.
//
// An Analyzer is not safe for concurrent use.
package rta
