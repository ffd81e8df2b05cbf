package rta

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/qualia-nss/dsp/fft"
)

// Analyzer defaults.
const (
	DefaultPeakHoldTime = 2 * time.Second
	DefaultPeakDecay    = 0.99
	DefaultAveraging    = 0.1
	DefaultHistorySize  = 100
)

// Errors returned by New.
var (
	ErrInvalidSampleRate = errors.New("rta: sample rate must be > 0")
	ErrInvalidFFTSize    = errors.New("rta: fft size must be a power of two >= 2")
)

// Frame is one analysed snapshot.
type Frame struct {
	Time     time.Time
	Spectrum []float64
}

// Option configures an Analyzer.
type Option func(*config)

type config struct {
	holdTime    time.Duration
	decay       float64
	averaging   float64
	historySize int
	now         func() time.Time
}

// WithPeakHoldTime sets how long the peak-hold trace stays put after the
// last new peak before it starts to fall.
func WithPeakHoldTime(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.holdTime = d
		}
	}
}

// WithPeakDecay sets the per-update linear amplitude factor applied to the
// peak-hold trace once the hold time has elapsed. Valid range is (0, 1].
func WithPeakDecay(factor float64) Option {
	return func(c *config) {
		if factor > 0 && factor <= 1 {
			c.decay = factor
		}
	}
}

// WithAveraging sets the weight alpha in (0, 1] of the newest frame in the
// exponential average.
func WithAveraging(alpha float64) Option {
	return func(c *config) {
		if alpha > 0 && alpha <= 1 {
			c.averaging = alpha
		}
	}
}

// WithHistorySize sets the number of frames kept in the history.
func WithHistorySize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.historySize = n
		}
	}
}

// WithClock replaces time.Now as the timestamp source of Analyze.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// Analyzer holds the state of one analyser session.
type Analyzer struct {
	sampleRate float64
	fftSize    int
	cfg        config
	decayDB    float64

	current  []float64
	peakHold []float64
	average  []float64
	lastPeak time.Time

	history []Frame
	next    int
}

// New returns an Analyzer for snapshots of fftSize/2 bins at sampleRate.
func New(sampleRate float64, fftSize int, opts ...Option) (*Analyzer, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	if fftSize < 2 || !fft.IsPowerOf2(fftSize) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFFTSize, fftSize)
	}

	cfg := config{
		holdTime:    DefaultPeakHoldTime,
		decay:       DefaultPeakDecay,
		averaging:   DefaultAveraging,
		historySize: DefaultHistorySize,
		now:         time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Analyzer{
		sampleRate: sampleRate,
		fftSize:    fftSize,
		cfg:        cfg,
		decayDB:    20 * math.Log10(cfg.decay),
	}, nil
}

// SampleRate returns the configured sample rate.
func (a *Analyzer) SampleRate() float64 { return a.sampleRate }

// FFTSize returns the configured FFT size.
func (a *Analyzer) FFTSize() int { return a.fftSize }

// Analyze records snapshot as the current frame, timestamped by the clock.
func (a *Analyzer) Analyze(snapshot []float64) Frame {
	return a.AnalyzeAt(snapshot, a.cfg.now())
}

// AnalyzeAt records snapshot as the current frame at time t and updates
// the peak-hold trace, the average and the history. The snapshot is
// copied.
func (a *Analyzer) AnalyzeAt(snapshot []float64, t time.Time) Frame {
	a.current = append(a.current[:0], snapshot...)

	a.updatePeakHold(t)
	a.updateAverage()

	frame := Frame{Time: t, Spectrum: clone(a.current)}
	a.pushHistory(frame)

	return Frame{Time: t, Spectrum: clone(a.current)}
}

// updatePeakHold keeps the per-bin maximum. A frame that raises any bin
// restarts the hold timer; once the hold time has passed without a new
// peak, each update lowers the whole trace by the decay factor.
func (a *Analyzer) updatePeakHold(t time.Time) {
	if len(a.peakHold) != len(a.current) {
		a.peakHold = clone(a.current)
		a.lastPeak = t

		return
	}

	raised := false

	for i, v := range a.current {
		if v > a.peakHold[i] {
			a.peakHold[i] = v
			raised = true
		}
	}

	if raised {
		a.lastPeak = t
		return
	}

	if t.Sub(a.lastPeak) >= a.cfg.holdTime {
		for i := range a.peakHold {
			a.peakHold[i] += a.decayDB
		}
	}
}

func (a *Analyzer) updateAverage() {
	if len(a.average) != len(a.current) {
		a.average = clone(a.current)
		return
	}

	alpha := a.cfg.averaging
	for i, v := range a.current {
		a.average[i] = alpha*v + (1-alpha)*a.average[i]
	}
}

func (a *Analyzer) pushHistory(f Frame) {
	if len(a.history) < a.cfg.historySize {
		a.history = append(a.history, f)
		return
	}

	a.history[a.next] = f
	a.next = (a.next + 1) % a.cfg.historySize
}

// Current returns a copy of the latest frame's spectrum.
func (a *Analyzer) Current() []float64 { return clone(a.current) }

// PeakHold returns a copy of the peak-hold trace.
func (a *Analyzer) PeakHold() []float64 { return clone(a.peakHold) }

// Average returns a copy of the averaged spectrum.
func (a *Analyzer) Average() []float64 { return clone(a.average) }

// History returns the retained frames, oldest first.
func (a *Analyzer) History() []Frame {
	out := make([]Frame, 0, len(a.history))
	for i := range a.history {
		f := a.history[(a.next+i)%len(a.history)]
		out = append(out, Frame{Time: f.Time, Spectrum: clone(f.Spectrum)})
	}

	return out
}

// Reset clears all session state.
func (a *Analyzer) Reset() {
	a.current = nil
	a.peakHold = nil
	a.average = nil
	a.history = nil
	a.next = 0
	a.lastPeak = time.Time{}
}

// Peaks runs FindPeaks on the current frame with the default threshold
// and distance.
func (a *Analyzer) Peaks() []Extremum {
	return FindPeaks(a.current, a.sampleRate, a.fftSize, DefaultPeakThreshold, DefaultMinDistance)
}

// Notches runs FindNotches on the current frame with the default
// threshold and distance.
func (a *Analyzer) Notches() []Extremum {
	return FindNotches(a.current, a.sampleRate, a.fftSize, DefaultNotchThreshold, DefaultMinDistance)
}

// DetectCombFiltering runs comb detection on the current frame.
func (a *Analyzer) DetectCombFiltering(expectedDelay float64) CombDetection {
	return DetectCombFiltering(a.current, a.sampleRate, a.fftSize, expectedDelay)
}

func clone(x []float64) []float64 {
	if x == nil {
		return nil
	}

	return append([]float64(nil), x...)
}
