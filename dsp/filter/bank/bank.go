package bank

import (
	"errors"
	"math"
	"sort"

	"github.com/cwbudde/qualia-nss/dsp/filter/biquad"
	"github.com/cwbudde/qualia-nss/dsp/filter/design"
)

// ErrBandIndex is returned when a band index is out of range.
var ErrBandIndex = errors.New("bank: band index out of range")

// octaveRatio is G = 10^(3/10) per IEC 61260.
var octaveRatio = math.Pow(10, 0.3)

// StandardOctaveCenters are the octave band centres used for
// reverberation time reporting.
var StandardOctaveCenters = []float64{125, 250, 500, 1000, 2000, 4000, 8000}

const (
	defaultOrder     = 4
	defaultLowerFreq = 20.0
	defaultUpperFreq = 20000.0
)

// Band represents one frequency band in a filter bank.
type Band struct {
	CenterFreq float64       // center frequency in Hz
	LowCutoff  float64       // lower -3 dB frequency in Hz
	HighCutoff float64       // upper -3 dB frequency in Hz
	LP         *biquad.Chain // lowpass filter at HighCutoff
	HP         *biquad.Chain // highpass filter at LowCutoff
}

// MagnitudeDB returns the combined bandpass magnitude response in dB
// at the given frequency.
func (b *Band) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return b.LP.MagnitudeDB(freqHz, sampleRate) + b.HP.MagnitudeDB(freqHz, sampleRate)
}

// Bank is a collection of frequency bands with matched filter pairs.
type Bank struct {
	bands      []Band
	sampleRate float64
	order      int
}

type bankConfig struct {
	order   int
	lowerHz float64
	upperHz float64
}

func defaultBankConfig() bankConfig {
	return bankConfig{
		order:   defaultOrder,
		lowerHz: defaultLowerFreq,
		upperHz: defaultUpperFreq,
	}
}

// Option configures a Bank.
type Option func(*bankConfig)

// WithOrder sets the Butterworth filter order per LP/HP pair.
// Must be a positive even integer; defaults to 4.
func WithOrder(n int) Option {
	return func(cfg *bankConfig) {
		if n > 0 && n%2 == 0 {
			cfg.order = n
		}
	}
}

// WithFrequencyRange sets custom lower and upper frequency limits
// for [Octave]. Bands outside this range are excluded.
func WithFrequencyRange(lower, upper float64) Option {
	return func(cfg *bankConfig) {
		if lower > 0 && upper > lower {
			cfg.lowerHz = lower
			cfg.upperHz = upper
		}
	}
}

// Octave builds an octave or fractional-octave filter bank.
//
// fraction=1 gives full octave bands, fraction=3 gives 1/3-octave bands.
// Centre frequencies follow the IEC 61260 base-10 system
// f_m = 1000 * G^(k/N) with G = 10^(3/10), and band edges are
// f_m * G^(+-1/(2N)).
func Octave(fraction int, sampleRate float64, opts ...Option) *Bank {
	if fraction <= 0 {
		fraction = 1
	}

	cfg := defaultBankConfig()
	for _, o := range opts {
		o(&cfg)
	}

	n := float64(fraction)
	halfBW := math.Pow(octaveRatio, 1/(2*n))
	kMin := int(math.Ceil(n * math.Log(cfg.lowerHz/1000) / math.Log(octaveRatio)))
	kMax := int(math.Floor(n * math.Log(cfg.upperHz/1000) / math.Log(octaveRatio)))

	var bands []Band
	for k := kMin; k <= kMax; k++ {
		fc := 1000 * math.Pow(octaveRatio, float64(k)/n)
		if band, ok := newBand(fc, fc/halfBW, fc*halfBW, cfg.order, sampleRate); ok {
			bands = append(bands, band)
		}
	}

	return newBank(bands, sampleRate, cfg.order)
}

// Custom builds a filter bank from arbitrary center frequencies and a
// bandwidth in octaves. Bands reaching Nyquist are skipped.
func Custom(centers []float64, bandwidth float64, sampleRate float64, opts ...Option) *Bank {
	if bandwidth <= 0 {
		bandwidth = 1
	}

	cfg := defaultBankConfig()
	for _, o := range opts {
		o(&cfg)
	}

	halfBW := math.Pow(2, bandwidth/2)

	var bands []Band
	for _, fc := range centers {
		if band, ok := newBand(fc, fc/halfBW, fc*halfBW, cfg.order, sampleRate); ok {
			bands = append(bands, band)
		}
	}

	return newBank(bands, sampleRate, cfg.order)
}

// RoomAcoustics builds the full-octave bank over [StandardOctaveCenters].
func RoomAcoustics(sampleRate float64, opts ...Option) *Bank {
	return Custom(StandardOctaveCenters, 1, sampleRate, opts...)
}

func newBand(fc, fLo, fHi float64, order int, sampleRate float64) (Band, bool) {
	if fc <= 0 || fLo <= 0 || sampleRate <= 0 || fHi >= sampleRate/2 {
		return Band{}, false
	}

	return Band{
		CenterFreq: fc,
		LowCutoff:  fLo,
		HighCutoff: fHi,
		LP:         biquad.NewChain(design.ButterworthLP(fHi, order, sampleRate)),
		HP:         biquad.NewChain(design.ButterworthHP(fLo, order, sampleRate)),
	}, true
}

func newBank(bands []Band, sampleRate float64, order int) *Bank {
	sort.Slice(bands, func(i, j int) bool {
		return bands[i].CenterFreq < bands[j].CenterFreq
	})

	return &Bank{
		bands:      bands,
		sampleRate: sampleRate,
		order:      order,
	}
}

// Bands returns all bands in the bank, ordered low to high frequency.
func (b *Bank) Bands() []Band { return b.bands }

// NumBands returns the number of bands.
func (b *Bank) NumBands() int { return len(b.bands) }

// SampleRate returns the sample rate the bank was built for.
func (b *Bank) SampleRate() float64 { return b.sampleRate }

// Order returns the Butterworth filter order used per LP/HP pair.
func (b *Bank) Order() int { return b.order }

// FilterBand returns a band-passed copy of x for band i. The band's filter
// state is reset before and after, so calls are independent.
func (b *Bank) FilterBand(i int, x []float64) ([]float64, error) {
	if i < 0 || i >= len(b.bands) {
		return nil, ErrBandIndex
	}

	band := &b.bands[i]
	band.HP.Reset()
	band.LP.Reset()

	out := make([]float64, len(x))
	copy(out, x)
	band.HP.Filter(out)
	band.LP.Filter(out)

	band.HP.Reset()
	band.LP.Reset()

	return out, nil
}

// ProcessBlock processes a block of input samples through all bands,
// keeping filter state across calls. Returns result[band][sample].
func (b *Bank) ProcessBlock(input []float64) [][]float64 {
	result := make([][]float64, len(b.bands))
	for i := range b.bands {
		buf := make([]float64, len(input))
		copy(buf, input)
		b.bands[i].HP.Filter(buf)
		b.bands[i].LP.Filter(buf)
		result[i] = buf
	}

	return result
}

// Reset clears all filter states across all bands.
func (b *Bank) Reset() {
	for i := range b.bands {
		b.bands[i].LP.Reset()
		b.bands[i].HP.Reset()
	}
}
