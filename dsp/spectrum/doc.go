// Package spectrum turns time-domain frames into dB magnitude snapshots.
//
// [Analyser] mirrors a browser-style frequency analyser: a Blackman-windowed
// FFT of a fixed size, magnitudes scaled by 1/N, exponential smoothing
// across frames and conversion to dB. Each snapshot has fftSize/2 bins with
// bin i at i*sampleRate/fftSize Hz, which is the input format of
// measure/rta.
package spectrum
