package rta

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/qualia-nss/internal/testutil"
	frequencystats "github.com/cwbudde/qualia-nss/stats/frequency"
)

const (
	testSampleRate = 48000.0
	testFFTSize    = 8192
	testBins       = testFFTSize / 2
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		sr      float64
		size    int
		wantErr error
	}{
		{"zero rate", 0, 1024, ErrInvalidSampleRate},
		{"negative rate", -1, 1024, ErrInvalidSampleRate},
		{"nan rate", math.NaN(), 1024, ErrInvalidSampleRate},
		{"size one", 48000, 1, ErrInvalidFFTSize},
		{"size not pow2", 48000, 1000, ErrInvalidFFTSize},
		{"ok", 48000, 2048, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.sr, tt.size)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFindPeaksAndNotches(t *testing.T) {
	spec := testutil.ConstantDB(21, -70)
	spec[10] = -10
	spec[4] = -95

	peaks := FindPeaks(spec, testSampleRate, 42, DefaultPeakThreshold, DefaultMinDistance)
	if len(peaks) != 1 || peaks[0].Index != 10 {
		t.Fatalf("peaks = %+v, want one at bin 10", peaks)
	}

	if want := 10 * testSampleRate / 42; math.Abs(peaks[0].Frequency-want) > 1e-9 {
		t.Errorf("peak frequency = %v, want %v", peaks[0].Frequency, want)
	}

	// Bin 4 lies inside the ±5 margin and is not scanned.
	if notches := FindNotches(spec, testSampleRate, 42, DefaultNotchThreshold, DefaultMinDistance); len(notches) != 0 {
		t.Errorf("notches = %+v, want none", notches)
	}

	spec[12] = -95
	notches := FindNotches(spec, testSampleRate, 42, DefaultNotchThreshold, DefaultMinDistance)
	if len(notches) != 1 || notches[0].Index != 12 || notches[0].Value != -95 {
		t.Errorf("notches = %+v, want one at bin 12", notches)
	}
}

func TestFindPeaksRequiresStrictMaximum(t *testing.T) {
	spec := testutil.ConstantDB(30, -90)
	spec[14], spec[15] = -20, -20

	if peaks := FindPeaks(spec, testSampleRate, 60, DefaultPeakThreshold, DefaultMinDistance); len(peaks) != 0 {
		t.Errorf("plateau produced peaks %+v", peaks)
	}

	// Below the threshold.
	spec[15] = -90
	if peaks := FindPeaks(spec, testSampleRate, 60, -10, DefaultMinDistance); len(peaks) != 0 {
		t.Errorf("sub-threshold peak reported: %+v", peaks)
	}
}

func TestDetectCombFilteringSynthetic(t *testing.T) {
	for _, delay := range []float64{0.0005, 0.001, 0.002} {
		spec := testutil.CombSpectrumDB(testBins, testSampleRate, delay, -40, -120)

		for _, expected := range []float64{0, delay} {
			got := DetectCombFiltering(spec, testSampleRate, testFFTSize, expected)

			if !got.Detected || got.Confidence <= DetectionThreshold {
				t.Fatalf("delay %v expected %v: %+v, want detection", delay, expected, got)
			}

			testutil.RequireWithinRel(t, "EstimatedDelay", got.EstimatedDelay, delay, 0.05)

			if got.Consistency != 1 {
				t.Errorf("delay %v: Consistency = %v, want 1", delay, got.Consistency)
			}

			if expected == 0 && got.DelayMatch != 1 {
				t.Errorf("DelayMatch without prior = %v, want 1", got.DelayMatch)
			}
		}
	}
}

func TestDetectCombFilteringCounts(t *testing.T) {
	spec := testutil.CombSpectrumDB(testBins, testSampleRate, 0.001, -40, -120)
	got := DetectCombFiltering(spec, testSampleRate, testFFTSize, 0.001)

	if got.NotchCount != 24 {
		t.Errorf("NotchCount = %d, want 24", got.NotchCount)
	}

	if got.PeakCount != 23 {
		t.Errorf("PeakCount = %d, want 23", got.PeakCount)
	}

	if math.Abs(got.NotchSpacing-1000) > 1 {
		t.Errorf("NotchSpacing = %v, want ~1000 Hz", got.NotchSpacing)
	}
}

func TestDetectCombFilteringRejects(t *testing.T) {
	tests := []struct {
		name     string
		spec     []float64
		expected float64
	}{
		{"flat", testutil.ConstantDB(testBins, -40), 0},
		{"silence floor", testutil.ConstantDB(testBins, -200), 0},
		{"too few notches", testutil.CombSpectrumDB(testBins, testSampleRate, 0.0001, -40, -120), 0},
		{"wrong expected delay", testutil.CombSpectrumDB(testBins, testSampleRate, 0.001, -40, -120), 0.002},
		{"empty", nil, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectCombFiltering(tt.spec, testSampleRate, testFFTSize, tt.expected)
			if got.Detected {
				t.Fatalf("detected comb filtering in %s: %+v", tt.name, got)
			}

			if got.Confidence < 0 || got.Confidence > DetectionThreshold {
				t.Errorf("Confidence = %v, want <= %v", got.Confidence, DetectionThreshold)
			}
		})
	}
}

func TestDetectedIffConfidenceAboveThreshold(t *testing.T) {
	delays := []float64{0.0001, 0.0002, 0.0003, 0.0005, 0.001, 0.002, 0.004}
	expected := []float64{0, 0.0002, 0.0005, 0.001, 0.0012, 0.003}

	for _, d := range delays {
		for _, e := range expected {
			for _, base := range []float64{-20, -40, -60} {
				spec := testutil.CombSpectrumDB(testBins, testSampleRate, d, base, -150)
				got := DetectCombFiltering(spec, testSampleRate, testFFTSize, e)

				if got.Confidence < 0 || got.Confidence > 1 {
					t.Fatalf("delay %v expected %v: Confidence = %v out of [0,1]", d, e, got.Confidence)
				}

				if got.Detected != (got.Confidence > DetectionThreshold) {
					t.Fatalf("delay %v expected %v: Detected = %v with Confidence %v", d, e, got.Detected, got.Confidence)
				}
			}
		}
	}
}

func TestPeakHoldHoldsThenFalls(t *testing.T) {
	a, err := New(testSampleRate, 16, WithPeakHoldTime(2*time.Second))
	if err != nil {
		t.Fatal(err)
	}

	t0 := time.Unix(1000, 0)
	at := func(d time.Duration) time.Time { return t0.Add(d) }

	a.AnalyzeAt(testutil.ConstantDB(8, -50), at(0))
	a.AnalyzeAt(testutil.ConstantDB(8, -60), at(500*time.Millisecond))
	testutil.RequireSliceNearlyEqual(t, a.PeakHold(), testutil.ConstantDB(8, -50), 0)

	raised := testutil.ConstantDB(8, -60)
	raised[3] = -40
	a.AnalyzeAt(raised, at(time.Second))

	// 1.5 s after the last new peak: still held.
	a.AnalyzeAt(testutil.ConstantDB(8, -60), at(2500*time.Millisecond))

	held := a.PeakHold()
	if held[3] != -40 || held[0] != -50 {
		t.Fatalf("held = %v, want bin 3 at -40 and others at -50", held)
	}

	step := 20 * math.Log10(DefaultPeakDecay)

	a.AnalyzeAt(testutil.ConstantDB(8, -60), at(3500*time.Millisecond))
	fallen := a.PeakHold()

	if math.Abs(fallen[3]-(-40+step)) > 1e-12 || math.Abs(fallen[0]-(-50+step)) > 1e-12 {
		t.Fatalf("after hold = %v, want one decay step of %v dB", fallen, step)
	}

	a.AnalyzeAt(testutil.ConstantDB(8, -60), at(3600*time.Millisecond))

	if got := a.PeakHold()[3]; math.Abs(got-(-40+2*step)) > 1e-12 {
		t.Errorf("second decay = %v, want %v", got, -40+2*step)
	}
}

func TestPeakHoldDecaysWhenHoldTimeElapses(t *testing.T) {
	a, err := New(testSampleRate, 8, WithPeakHoldTime(2*time.Second))
	if err != nil {
		t.Fatal(err)
	}

	t0 := time.Unix(1000, 0)
	a.AnalyzeAt(testutil.ConstantDB(4, -30), t0)

	a.AnalyzeAt(testutil.ConstantDB(4, -60), t0.Add(2*time.Second-time.Nanosecond))
	testutil.RequireSliceNearlyEqual(t, a.PeakHold(), testutil.ConstantDB(4, -30), 0)

	a.AnalyzeAt(testutil.ConstantDB(4, -60), t0.Add(2*time.Second))

	want := testutil.ConstantDB(4, -30+20*math.Log10(DefaultPeakDecay))
	testutil.RequireSliceNearlyEqual(t, a.PeakHold(), want, 1e-12)
}

func TestPeakHoldNeverDecreasesWithinHoldTime(t *testing.T) {
	clock := time.Unix(0, 0)
	a, err := New(testSampleRate, 64, WithClock(func() time.Time { return clock }))
	if err != nil {
		t.Fatal(err)
	}

	noise := testutil.Noise(7, 20, 32*50)
	prev := []float64(nil)

	for f := range 50 {
		frame := make([]float64, 32)
		for i := range frame {
			frame[i] = -60 + noise[f*32+i]
		}

		a.Analyze(frame)
		clock = clock.Add(20 * time.Millisecond)

		held := a.PeakHold()
		for i := range prev {
			if held[i] < prev[i] {
				t.Fatalf("frame %d bin %d: peak hold fell from %v to %v", f, i, prev[i], held[i])
			}
		}

		prev = held
	}
}

func TestPeakHoldResetsOnSizeChange(t *testing.T) {
	a, err := New(testSampleRate, 16)
	if err != nil {
		t.Fatal(err)
	}

	a.Analyze(testutil.ConstantDB(8, -10))
	a.Analyze(testutil.ConstantDB(4, -70))

	testutil.RequireSliceNearlyEqual(t, a.PeakHold(), testutil.ConstantDB(4, -70), 0)
	testutil.RequireSliceNearlyEqual(t, a.Average(), testutil.ConstantDB(4, -70), 0)
}

func TestAveraging(t *testing.T) {
	a, err := New(testSampleRate, 8, WithAveraging(0.1))
	if err != nil {
		t.Fatal(err)
	}

	a.Analyze(testutil.ConstantDB(4, -20))
	a.Analyze(testutil.ConstantDB(4, -40))

	testutil.RequireSliceNearlyEqual(t, a.Average(), testutil.ConstantDB(4, -22), 1e-12)
}

func TestHistoryRing(t *testing.T) {
	a, err := New(testSampleRate, 4, WithHistorySize(3))
	if err != nil {
		t.Fatal(err)
	}

	for i := range 5 {
		a.AnalyzeAt([]float64{float64(i), 0}, time.Unix(int64(i), 0))
	}

	h := a.History()
	if len(h) != 3 {
		t.Fatalf("len(History) = %d, want 3", len(h))
	}

	for i, f := range h {
		if want := float64(i + 2); f.Spectrum[0] != want || f.Time.Unix() != int64(i+2) {
			t.Errorf("History[%d] = %+v, want frame %v", i, f, want)
		}
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	a, err := New(testSampleRate, 8)
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.ConstantDB(4, -30)
	frame := a.Analyze(in)
	in[0] = 0
	frame.Spectrum[1] = 0

	cur := a.Current()
	cur[2] = 0

	h := a.History()
	h[0].Spectrum[3] = 0

	testutil.RequireSliceNearlyEqual(t, a.Current(), testutil.ConstantDB(4, -30), 0)
	testutil.RequireSliceNearlyEqual(t, a.History()[0].Spectrum, testutil.ConstantDB(4, -30), 0)
}

func TestReset(t *testing.T) {
	a, err := New(testSampleRate, 8)
	if err != nil {
		t.Fatal(err)
	}

	a.Analyze(testutil.ConstantDB(4, -30))
	a.Reset()

	if a.Current() != nil || a.PeakHold() != nil || a.Average() != nil || len(a.History()) != 0 {
		t.Fatal("state survived Reset")
	}
}

func TestAnalyzerDetectCombFiltering(t *testing.T) {
	a, err := New(testSampleRate, testFFTSize)
	if err != nil {
		t.Fatal(err)
	}

	a.Analyze(testutil.CombSpectrumDB(testBins, testSampleRate, 0.001, -40, -120))

	if got := a.DetectCombFiltering(0.001); !got.Detected {
		t.Errorf("DetectCombFiltering = %+v, want detection", got)
	}

	if n := len(a.Notches()); n == 0 {
		t.Error("Notches() is empty")
	}

	if n := len(a.Peaks()); n == 0 {
		t.Error("Peaks() is empty")
	}
}

func TestFeatures(t *testing.T) {
	a, err := New(testSampleRate, 16)
	if err != nil {
		t.Fatal(err)
	}

	a.Analyze(testutil.ConstantDB(8, -20))
	f := a.Features()

	if math.Abs(f.Flatness-1) > 1e-9 {
		t.Errorf("Flatness = %v, want 1", f.Flatness)
	}

	// Eight equal bins at 3000 Hz spacing.
	if math.Abs(f.Centroid-3.5*3000) > 1e-6 {
		t.Errorf("Centroid = %v, want %v", f.Centroid, 3.5*3000)
	}
}

func TestCompare(t *testing.T) {
	x := testutil.CombSpectrumDB(64, testSampleRate, 0.001, -40, -120)

	got, err := Compare(x, x)
	if err != nil {
		t.Fatal(err)
	}

	if got.MSE != 0 || math.Abs(got.Correlation-1) > 1e-12 {
		t.Errorf("Compare(x, x) = %+v, want MSE 0 and correlation 1", got)
	}

	if _, err := Compare(x, x[:10]); !errors.Is(err, frequencystats.ErrLengthMismatch) {
		t.Errorf("err = %v, want ErrLengthMismatch", err)
	}
}

func BenchmarkDetectCombFiltering(b *testing.B) {
	spec := testutil.CombSpectrumDB(testBins, testSampleRate, 0.001, -40, -120)

	for b.Loop() {
		_ = DetectCombFiltering(spec, testSampleRate, testFFTSize, 0.001)
	}
}
