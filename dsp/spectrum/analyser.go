package spectrum

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"
	"github.com/cwbudde/qualia-nss/dsp/core"
	"github.com/cwbudde/qualia-nss/dsp/fft"
	"github.com/cwbudde/qualia-nss/dsp/window"
)

// Defaults used by NewAnalyser.
const (
	DefaultSmoothing = 0.8
	DefaultWindow    = window.TypeBlackman

	// magnitudeFloor bounds snapshot values at -200 dB.
	magnitudeFloor = 1e-10
)

// ErrFrameLength is returned when a frame is longer than the analyser size.
var ErrFrameLength = errors.New("spectrum: frame longer than fft size")

// Option configures an Analyser.
type Option func(*config)

type config struct {
	smoothing float64
	window    window.Type
}

// WithSmoothing sets the time constant in [0, 1) blending each new
// magnitude with the previous one. 0 disables smoothing.
func WithSmoothing(tau float64) Option {
	return func(c *config) {
		if tau >= 0 && tau < 1 {
			c.smoothing = tau
		}
	}
}

// WithWindow selects the analysis window.
func WithWindow(t window.Type) Option {
	return func(c *config) {
		c.window = t
	}
}

// Analyser produces dB snapshots of successive frames. It keeps the
// smoothed magnitudes of the previous frame and is not safe for concurrent
// use.
type Analyser struct {
	eng       *fft.Engine
	win       []float64
	smoothing float64
	prev      []float64
	re, im    []float64
}

// NewAnalyser returns an analyser for frames of fftSize samples. fftSize
// must be a power of two of at least 2.
func NewAnalyser(fftSize int, opts ...Option) (*Analyser, error) {
	if fftSize < 2 {
		return nil, fmt.Errorf("%w: %d", fft.ErrInvalidSize, fftSize)
	}

	eng, err := fft.NewEngine(fftSize)
	if err != nil {
		return nil, err
	}

	cfg := config{smoothing: DefaultSmoothing, window: DefaultWindow}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Analyser{
		eng:       eng,
		win:       window.Generate(cfg.window, fftSize, window.WithPeriodic()),
		smoothing: cfg.smoothing,
		prev:      make([]float64, fftSize/2),
		re:        make([]float64, fftSize),
		im:        make([]float64, fftSize),
	}, nil
}

// Size returns the FFT size.
func (a *Analyser) Size() int { return a.eng.Size() }

// Bins returns the snapshot length, Size()/2.
func (a *Analyser) Bins() int { return len(a.prev) }

// Snapshot analyses one frame and returns a new dB magnitude snapshot.
// A frame shorter than the FFT size is aligned to the end of the analysis
// buffer, preceded by zeros.
func (a *Analyser) Snapshot(frame []float64) ([]float64, error) {
	n := a.eng.Size()
	if len(frame) > n {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameLength, len(frame), n)
	}

	clear(a.re)
	copy(a.re[n-len(frame):], frame)

	vecmath.MulBlockInPlace(a.re, a.win)

	if err := a.eng.RealTransform(a.re, a.im); err != nil {
		return nil, err
	}

	mag := fft.Magnitude(a.re[:len(a.prev)], a.im[:len(a.prev)])
	scale := 1 / float64(n)
	out := make([]float64, len(a.prev))

	for i, m := range mag {
		a.prev[i] = a.smoothing*a.prev[i] + (1-a.smoothing)*m*scale
		out[i] = core.AmplitudeToDBFloor(a.prev[i], magnitudeFloor)
	}

	return out, nil
}

// Reset clears the smoothing state.
func (a *Analyser) Reset() {
	clear(a.prev)
}

// BinFrequency returns the centre frequency of snapshot bin i.
func BinFrequency(i int, sampleRate float64, fftSize int) float64 {
	if fftSize <= 0 {
		return 0
	}

	return float64(i) * sampleRate / float64(fftSize)
}
