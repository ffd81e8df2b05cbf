package impulse

import (
	"errors"
	"math"

	"github.com/cwbudde/qualia-nss/dsp/conv"
	"github.com/cwbudde/qualia-nss/dsp/core"
	"github.com/cwbudde/qualia-nss/dsp/filter/onepole"
	"github.com/cwbudde/qualia-nss/dsp/window"
)

// Errors returned by the extractor.
var (
	ErrEmptyInput     = errors.New("impulse: empty input")
	ErrInvalidOptions = errors.New("impulse: sample rate and window length must be positive")
)

const (
	onsetWindowSec     = 0.001
	onsetThreshold     = 0.01
	maxFadeSec         = 0.010
	maxFadeFraction    = 0.25
	defaultSampleRate  = 48000
	defaultWindowStart = 0.005
	defaultWindowLen   = 2.0
)

// ReferenceKind selects what the reference signal passed to [Extract] is.
type ReferenceKind int

const (
	// ReferenceInverseFilter is the analytic inverse filter of the sweep.
	ReferenceInverseFilter ReferenceKind = iota

	// ReferenceExcitation is the played sweep itself.
	ReferenceExcitation
)

// String returns the reference kind name.
func (k ReferenceKind) String() string {
	switch k {
	case ReferenceInverseFilter:
		return "inverse-filter"
	case ReferenceExcitation:
		return "excitation"
	default:
		return "unknown"
	}
}

// Options configures an extraction.
type Options struct {
	// SampleRate in Hz used for all time conversions.
	SampleRate float64

	// Regularization is added to the excitation power spectrum before
	// division.
	Regularization float64

	// WindowStart is the offset in seconds from the onset to the start of
	// the retained window. It is used as given, including zero.
	WindowStart float64

	// WindowLength is the duration of the retained response in seconds.
	WindowLength float64

	// Reference tells how the reference argument is interpreted.
	Reference ReferenceKind

	// HighpassAlpha is the pole radius of the preprocessing DC blocker.
	HighpassAlpha float64
}

// DefaultOptions returns the default extraction options.
func DefaultOptions() Options {
	return Options{
		SampleRate:     defaultSampleRate,
		Regularization: conv.DefaultEpsilon,
		WindowStart:    defaultWindowStart,
		WindowLength:   defaultWindowLen,
		Reference:      ReferenceInverseFilter,
		HighpassAlpha:  onepole.DefaultAlpha,
	}
}

func (o Options) withDefaults() (Options, error) {
	if o.SampleRate < 0 || o.WindowLength < 0 || math.IsNaN(o.SampleRate) || math.IsNaN(o.WindowLength) {
		return o, ErrInvalidOptions
	}

	if o.SampleRate == 0 {
		o.SampleRate = defaultSampleRate
	}

	if o.WindowLength == 0 {
		o.WindowLength = defaultWindowLen
	}

	if !(o.Regularization > 0) {
		o.Regularization = conv.DefaultEpsilon
	}

	if o.HighpassAlpha == 0 {
		o.HighpassAlpha = onepole.DefaultAlpha
	}

	return o, nil
}

// Metadata records the parameters an impulse response was extracted with.
type Metadata struct {
	Regularization float64
	WindowStart    float64
	WindowLength   float64
	Reference      ReferenceKind

	// MaxAmplitude is the peak absolute value before normalisation.
	MaxAmplitude float64
}

// Result is an extracted impulse response.
type Result struct {
	ImpulseResponse []float64
	OnsetIndex      int     // onset in the deconvolved signal, in samples
	OnsetTime       float64 // onset in seconds
	SampleRate      float64
	Length          int     // len(ImpulseResponse)
	Duration        float64 // Length / SampleRate
	Metadata        Metadata
}

// Extract deconvolves recording against reference and returns the
// windowed, peak-normalised impulse response.
//
// The response is exactly round(WindowLength*SampleRate) samples long.
// Portions of the window outside the deconvolved data are zero.
func Extract(recording, reference []float64, opts Options) (*Result, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	full, err := Deconvolve(recording, reference, opts)
	if err != nil {
		return nil, err
	}

	onset := FindOnset(full, opts.SampleRate)
	start := onset + int(math.Round(opts.WindowStart*opts.SampleRate))
	length := int(math.Round(opts.WindowLength * opts.SampleRate))

	ir := make([]float64, length)
	for i := range ir {
		if j := start + i; j >= 0 && j < len(full) {
			ir[i] = full[j]
		}
	}

	fadeLen := min(int(math.Round(maxFadeSec*opts.SampleRate)), int(maxFadeFraction*float64(length)))
	window.FadeInOut(ir, fadeLen)

	peak := core.NormalizePeak(ir)

	return &Result{
		ImpulseResponse: ir,
		OnsetIndex:      onset,
		OnsetTime:       float64(onset) / opts.SampleRate,
		SampleRate:      opts.SampleRate,
		Length:          length,
		Duration:        float64(length) / opts.SampleRate,
		Metadata: Metadata{
			Regularization: opts.Regularization,
			WindowStart:    opts.WindowStart,
			WindowLength:   opts.WindowLength,
			Reference:      opts.Reference,
			MaxAmplitude:   peak,
		},
	}, nil
}

// Deconvolve preprocesses both inputs and returns the full deconvolved
// signal of length len(recording)+len(reference)-1, before onset search
// and windowing.
func Deconvolve(recording, reference []float64, opts Options) ([]float64, error) {
	if len(recording) == 0 || len(reference) == 0 {
		return nil, ErrEmptyInput
	}

	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	kernel := conv.KernelInverse
	if opts.Reference == ReferenceExcitation {
		kernel = conv.KernelExcitation
	}

	return conv.Deconvolve(
		Preprocess(recording, opts.HighpassAlpha),
		Preprocess(reference, opts.HighpassAlpha),
		conv.DeconvOptions{Epsilon: opts.Regularization, Kernel: kernel},
	)
}

// Preprocess returns a copy of x with its mean removed and a one-pole
// DC-blocking high-pass applied.
func Preprocess(x []float64, alpha float64) []float64 {
	out := core.RemoveDC(x)
	onepole.NewHighpass(alpha).ProcessBlock(out)

	return out
}

// FindOnset returns the start index of the first 1 ms window whose energy
// exceeds 1% of the largest window energy. It returns 0 when nothing
// exceeds the threshold.
func FindOnset(x []float64, sampleRate float64) int {
	if len(x) == 0 || sampleRate <= 0 {
		return 0
	}

	w := max(int(math.Round(onsetWindowSec*sampleRate)), 1)
	w = min(w, len(x))

	prefix := make([]float64, len(x)+1)
	for i, v := range x {
		prefix[i+1] = prefix[i] + v*v
	}

	windows := len(x) - w + 1

	var peak float64
	for i := range windows {
		peak = math.Max(peak, prefix[i+w]-prefix[i])
	}

	if peak <= 0 {
		return 0
	}

	threshold := onsetThreshold * peak
	for i := range windows {
		if prefix[i+w]-prefix[i] > threshold {
			return i
		}
	}

	return 0
}
