package core

import "math"

// Clamp limits value to [lo, hi]. Swapped bounds are reordered.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	return math.Min(math.Max(value, lo), hi)
}

// DBToLinear converts an amplitude level in dB to a linear gain.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// AmplitudeToDBFloor returns 20*log10(max(|linear|, floor)).
func AmplitudeToDBFloor(linear, floor float64) float64 {
	return 20 * math.Log10(math.Max(math.Abs(linear), floor))
}

// EnergyRatioToDB returns 10*log10(ratio), never below floorDB.
func EnergyRatioToDB(ratio, floorDB float64) float64 {
	if ratio <= 0 {
		return floorDB
	}

	return math.Max(10*math.Log10(ratio), floorDB)
}
