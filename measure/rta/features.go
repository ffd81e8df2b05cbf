package rta

import (
	"github.com/cwbudde/qualia-nss/dsp/core"
	frequencystats "github.com/cwbudde/qualia-nss/stats/frequency"
)

// Features are spectral shape descriptors of one snapshot.
type Features struct {
	Centroid float64 // Hz
	Spread   float64 // Hz
	Rolloff  float64 // Hz, 85 % of energy
	Flatness float64 // 0..1
}

// Comparison scores the similarity of two snapshots.
type Comparison struct {
	MSE         float64 // dB²
	Correlation float64 // Pearson, -1..1
}

// SpectralFeatures converts a dB snapshot to linear magnitudes and
// computes its shape descriptors.
func SpectralFeatures(spectrum []float64, sampleRate float64) Features {
	mag := make([]float64, len(spectrum))
	for i, db := range spectrum {
		mag[i] = core.DBToLinear(db)
	}

	s := frequencystats.Calculate(mag, sampleRate)

	return Features{
		Centroid: s.Centroid,
		Spread:   s.Spread,
		Rolloff:  s.Rolloff,
		Flatness: s.Flatness,
	}
}

// Features computes the shape descriptors of the current frame.
func (a *Analyzer) Features() Features {
	return SpectralFeatures(a.current, a.sampleRate)
}

// Compare returns the mean squared error and correlation of two
// equal-length dB snapshots.
func Compare(a, b []float64) (Comparison, error) {
	mse, err := frequencystats.MSE(a, b)
	if err != nil {
		return Comparison{}, err
	}

	r, err := frequencystats.Correlation(a, b)
	if err != nil {
		return Comparison{}, err
	}

	return Comparison{MSE: mse, Correlation: r}, nil
}
