package ir

import (
	"errors"
	"math"

	"github.com/cwbudde/qualia-nss/dsp/filter/bank"
)

// Errors returned by IR analysis functions.
var (
	ErrEmptyIR           = errors.New("ir: impulse response is empty")
	ErrInvalidSampleRate = errors.New("ir: sample rate must be positive")
	ErrInvalidTime       = errors.New("ir: time must be positive")
	ErrNoDecay           = errors.New("ir: insufficient decay for RT calculation")
)

// Messages reported in BandResult.Error.
const (
	errInsufficientRange = "insufficient decay range"
	errNoValidEstimate   = "no valid decay estimate"
)

// BandFilter selects how band-limited analysis splits the response.
type BandFilter int

const (
	// BandFilterPassThrough analyses the unfiltered response for every
	// band centre.
	BandFilterPassThrough BandFilter = iota

	// BandFilterOctave filters each band with the Butterworth octave bank.
	BandFilterOctave
)

// Options configures decay analysis.
type Options struct {
	// OnsetOffset in seconds is skipped at the start of the response
	// before integration. Used as given, including zero.
	OnsetOffset float64

	// MinDecayRange is the dB range the EDC must span before any fit is
	// attempted. Zero selects the default of 20 dB.
	MinDecayRange float64

	// BandLimited enables per-octave-band results. The bands are only
	// filtered when BandFilter is BandFilterOctave, as in DefaultOptions;
	// the zero value passes the response through unfiltered.
	BandLimited bool

	// BandFilter selects the band-splitting method.
	BandFilter BandFilter
}

// DefaultOptions returns the default analysis options.
func DefaultOptions() Options {
	return Options{
		OnsetOffset:   0.005,
		MinDecayRange: 20,
		BandFilter:    BandFilterOctave,
	}
}

// BandResult holds the decay estimates for one band. CenterFrequency is 0
// for the broadband result.
type BandResult struct {
	CenterFrequency float64
	EDT             DecayEstimate
	T20             DecayEstimate
	T30             DecayEstimate

	// RT60 is T30 when valid, else T20, else EDT, else nil.
	RT60 *float64

	// Confidence is the mean (r+1)/2 over the valid estimates, in [0, 1].
	Confidence float64

	// DecayRange is the dB span of the band's EDC.
	DecayRange float64

	// Error explains a zero-confidence result. Empty otherwise.
	Error string
}

// Metadata carries the analysis parameters and the energy ratio metrics
// computed from the response peak onward.
type Metadata struct {
	SampleRate    float64
	OnsetOffset   float64
	MinDecayRange float64
	PeakIndex     int     // sample index of the absolute maximum
	C50           float64 // dB
	C80           float64 // dB
	D50           float64 // ratio
	D80           float64 // ratio
	CenterTime    float64 // seconds
}

// Analysis is the result of [Analyzer.AnalyzeDecay].
type Analysis struct {
	Broadband BandResult
	Bands     []BandResult
	EDC       EDC
	Metadata  Metadata
}

// Analyzer computes IR metrics from impulse response data.
type Analyzer struct {
	SampleRate float64
}

// NewAnalyzer creates an IR analyzer with the given sample rate.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{SampleRate: sampleRate}
}

// Analyze runs decay analysis on ir with a throwaway analyzer.
func Analyze(ir []float64, sampleRate float64, opts Options) (*Analysis, error) {
	return NewAnalyzer(sampleRate).AnalyzeDecay(ir, opts)
}

// AnalyzeDecay computes the broadband EDC and decay estimates of ir, plus
// octave-band estimates when opts.BandLimited is set.
func (a *Analyzer) AnalyzeDecay(ir []float64, opts Options) (*Analysis, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}

	if a.SampleRate <= 0 || math.IsNaN(a.SampleRate) {
		return nil, ErrInvalidSampleRate
	}

	if opts.MinDecayRange == 0 {
		opts.MinDecayRange = DefaultOptions().MinDecayRange
	}

	offset := min(max(int(math.Round(opts.OnsetOffset*a.SampleRate)), 0), len(ir))
	seg := ir[offset:]

	broadband, edc := a.analyzeBand(seg, 0, opts.MinDecayRange)

	peakIdx := findPeak(ir)
	fromPeak := ir[peakIdx:]

	res := &Analysis{
		Broadband: broadband,
		EDC:       edc,
		Metadata: Metadata{
			SampleRate:    a.SampleRate,
			OnsetOffset:   opts.OnsetOffset,
			MinDecayRange: opts.MinDecayRange,
			PeakIndex:     peakIdx,
			C50:           a.clarity(fromPeak, 50),
			C80:           a.clarity(fromPeak, 80),
			D50:           a.definition(fromPeak, 50),
			D80:           a.definition(fromPeak, 80),
			CenterTime:    a.centerTime(fromPeak),
		},
	}

	if opts.BandLimited {
		bands, err := a.analyzeBands(seg, opts)
		if err != nil {
			return nil, err
		}

		res.Bands = bands
	}

	return res, nil
}

func (a *Analyzer) analyzeBands(seg []float64, opts Options) ([]BandResult, error) {
	fb := bank.RoomAcoustics(a.SampleRate)
	out := make([]BandResult, 0, fb.NumBands())

	for i, band := range fb.Bands() {
		x := seg
		if opts.BandFilter == BandFilterOctave && len(seg) > 0 {
			filtered, err := fb.FilterBand(i, seg)
			if err != nil {
				return nil, err
			}

			x = filtered
		}

		r, _ := a.analyzeBand(x, band.CenterFreq, opts.MinDecayRange)
		out = append(out, r)
	}

	return out, nil
}

// analyzeBand computes the EDC of x and the three decay estimates.
func (a *Analyzer) analyzeBand(x []float64, centerFreq, minRange float64) (BandResult, EDC) {
	edc := a.energyDecay(x)
	res := BandResult{
		CenterFrequency: centerFreq,
		EDT:             DecayEstimate{StartDB: edtRange[0], EndDB: edtRange[1]},
		T20:             DecayEstimate{StartDB: t20Range[0], EndDB: t20Range[1]},
		T30:             DecayEstimate{StartDB: t30Range[0], EndDB: t30Range[1]},
		DecayRange:      edc.Range(),
	}

	if res.DecayRange < minRange {
		res.Error = errInsufficientRange
		return res, edc
	}

	res.EDT = a.estimate(edc, edtRange[0], edtRange[1])
	res.T20 = a.estimate(edc, t20Range[0], t20Range[1])
	res.T30 = a.estimate(edc, t30Range[0], t30Range[1])

	var sum float64
	var valid int

	for _, e := range []DecayEstimate{res.EDT, res.T20, res.T30} {
		if e.Valid() {
			sum += e.Confidence
			valid++
		}
	}

	if valid == 0 {
		res.Error = errNoValidEstimate
		return res, edc
	}

	res.Confidence = sum / float64(valid)

	for _, e := range []DecayEstimate{res.T30, res.T20, res.EDT} {
		if e.Valid() {
			rt := *e.RT60
			res.RT60 = &rt
			break
		}
	}

	return res, edc
}

// RT60 returns the broadband reverberation time of ir with no onset offset:
// T30 when it can be fitted, else T20, else EDT.
func (a *Analyzer) RT60(ir []float64) (float64, error) {
	opts := DefaultOptions()
	opts.OnsetOffset = 0

	res, err := a.AnalyzeDecay(ir, opts)
	if err != nil {
		return 0, err
	}

	if res.Broadband.RT60 == nil {
		return 0, ErrNoDecay
	}

	return *res.Broadband.RT60, nil
}

// findPeak returns the index of the absolute maximum in the IR.
func findPeak(ir []float64) int {
	peakIdx := 0
	peakVal := 0.0

	for i, v := range ir {
		if av := math.Abs(v); av > peakVal {
			peakVal = av
			peakIdx = i
		}
	}

	return peakIdx
}
