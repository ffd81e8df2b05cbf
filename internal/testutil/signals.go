package testutil

import (
	"math"
	"math/rand"
)

// Sine generates a deterministic sine wave starting at phase 0.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Noise generates uniform white noise in [-amplitude, amplitude) with a
// fixed seed for reproducibility.
func Noise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// ExponentialDecay returns exp(-t/tau) sampled over durationSec, with tau
// chosen so that the energy falls by 60 dB after rt60 seconds.
func ExponentialDecay(sampleRate, rt60, durationSec float64) []float64 {
	n := int(sampleRate * durationSec)
	out := make([]float64, n)
	rate := 3 * math.Ln10 / rt60
	for i := range out {
		out[i] = math.Exp(-rate * float64(i) / sampleRate)
	}
	return out
}

// DecayingNoise returns white noise shaped by an exponential envelope whose
// energy decays by 60 dB after rt60 seconds. This is the usual synthetic
// room impulse response.
func DecayingNoise(seed int64, sampleRate, rt60, durationSec float64) []float64 {
	env := ExponentialDecay(sampleRate, rt60, durationSec)
	rng := rand.New(rand.NewSource(seed))
	for i := range env {
		env[i] *= rng.NormFloat64()
	}
	return env
}

// CombSpectrumDB returns a dB magnitude snapshot of bins bins (fftSize/2)
// for a flat spectrum at baseDB summed with a copy delayed by delaySec.
// Notches sit at (2k+1)/(2*delaySec) Hz. Values are floored at floorDB.
func CombSpectrumDB(bins int, sampleRate, delaySec, baseDB, floorDB float64) []float64 {
	out := make([]float64, bins)
	fftSize := float64(2 * bins)
	for i := range out {
		f := float64(i) * sampleRate / fftSize
		mag := math.Abs(math.Cos(math.Pi * f * delaySec))
		db := baseDB + 20*math.Log10(2*mag+1e-300)
		if db < floorDB {
			db = floorDB
		}
		out[i] = db
	}
	return out
}

// ConstantDB returns a snapshot of bins bins all set to db.
func ConstantDB(bins int, db float64) []float64 {
	out := make([]float64, bins)
	for i := range out {
		out[i] = db
	}
	return out
}
