package ir

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/qualia-nss/internal/testutil"
)

func TestAnalyzeExponentialDecay(t *testing.T) {
	const sampleRate = 48000.0

	tests := []struct {
		name     string
		rt60     float64
		duration float64
	}{
		{"short room", 0.4, 1.5},
		{"medium room", 1.0, 3.0},
		{"long hall", 2.0, 6.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ir := testutil.ExponentialDecay(sampleRate, tt.rt60, tt.duration)

			res, err := Analyze(ir, sampleRate, DefaultOptions())
			if err != nil {
				t.Fatal(err)
			}

			b := res.Broadband
			for name, e := range map[string]DecayEstimate{"EDT": b.EDT, "T20": b.T20, "T30": b.T30} {
				if !e.Valid() {
					t.Fatalf("%s invalid", name)
				}

				testutil.RequireWithinRel(t, name, *e.RT60, tt.rt60, 0.02)

				if e.Correlation < 0.999 {
					t.Errorf("%s correlation = %.5f, want ~1", name, e.Correlation)
				}
			}

			if b.RT60 == nil || *b.RT60 != *b.T30.RT60 {
				t.Errorf("RT60 = %v, want T30", b.RT60)
			}

			if math.Abs(b.Confidence-1) > 1e-3 {
				t.Errorf("confidence = %.4f, want ~1", b.Confidence)
			}

			if b.Error != "" {
				t.Errorf("unexpected error string %q", b.Error)
			}
		})
	}
}

func TestAnalyzeDecayingNoiseT30(t *testing.T) {
	const (
		sampleRate = 48000.0
		rt60       = 0.8
	)

	for seed := int64(1); seed <= 3; seed++ {
		ir := testutil.DecayingNoise(seed, sampleRate, rt60, 1.5)

		res, err := Analyze(ir, sampleRate, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}

		if !res.Broadband.T30.Valid() {
			t.Fatalf("seed %d: T30 invalid", seed)
		}

		testutil.RequireWithinRel(t, "T30", *res.Broadband.T30.RT60, rt60, 0.10)

		if c := res.Broadband.Confidence; c < 0.9 || c > 1 {
			t.Errorf("seed %d: confidence = %.3f, want in [0.9, 1]", seed, c)
		}
	}
}

func TestEDCShape(t *testing.T) {
	ir := testutil.DecayingNoise(7, 48000, 0.5, 1)

	res, err := Analyze(ir, 48000, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	edc := res.EDC
	if len(edc.Time) != len(edc.Level) {
		t.Fatalf("time/level lengths %d/%d differ", len(edc.Time), len(edc.Level))
	}

	if want := len(ir) - 240; len(edc.Level) != want {
		t.Errorf("EDC length = %d, want %d (onset offset skipped)", len(edc.Level), want)
	}

	if edc.Level[0] != 0 {
		t.Errorf("EDC starts at %v dB, want 0", edc.Level[0])
	}

	for i := 1; i < len(edc.Level); i++ {
		if edc.Level[i] > edc.Level[i-1] {
			t.Fatalf("EDC rises at %d: %v > %v", i, edc.Level[i], edc.Level[i-1])
		}
	}
}

func TestAnalyzeSilentInput(t *testing.T) {
	res, err := Analyze(make([]float64, 48000), 48000, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	b := res.Broadband
	if b.Confidence != 0 || b.RT60 != nil || b.Error == "" {
		t.Errorf("silent input: confidence=%v rt60=%v error=%q, want 0/nil/non-empty",
			b.Confidence, b.RT60, b.Error)
	}

	if b.EDT.Valid() || b.T20.Valid() || b.T30.Valid() {
		t.Error("silent input produced a valid estimate")
	}
}

func TestAnalyzeInsufficientRange(t *testing.T) {
	opts := DefaultOptions()
	opts.OnsetOffset = 0

	res, err := Analyze([]float64{1, 1, 1, 1}, 48000, opts)
	if err != nil {
		t.Fatal(err)
	}

	if res.Broadband.Error != errInsufficientRange {
		t.Errorf("error = %q, want %q", res.Broadband.Error, errInsufficientRange)
	}

	if res.Broadband.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", res.Broadband.Confidence)
	}
}

func TestAnalyzeConfidenceBounds(t *testing.T) {
	inputs := map[string][]float64{
		"noise":   testutil.Noise(11, 1, 24000),
		"decay":   testutil.DecayingNoise(12, 48000, 0.3, 0.5),
		"impulse": testutil.Impulse(4800, 500),
		"spikes": func() []float64 {
			x := make([]float64, 9600)
			x[300], x[5000] = 1, 0.5
			return x
		}(),
	}

	for name, ir := range inputs {
		res, err := Analyze(ir, 48000, Options{OnsetOffset: 0.005, BandLimited: true})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}

		for _, b := range append([]BandResult{res.Broadband}, res.Bands...) {
			if b.Confidence < 0 || b.Confidence > 1 || math.IsNaN(b.Confidence) {
				t.Errorf("%s @ %.0f Hz: confidence %v out of [0, 1]", name, b.CenterFrequency, b.Confidence)
			}
		}
	}
}

func TestAnalyzeBands(t *testing.T) {
	const (
		sampleRate = 48000.0
		rt60       = 0.6
	)

	ir := testutil.DecayingNoise(21, sampleRate, rt60, 1.2)

	opts := DefaultOptions()
	opts.BandLimited = true

	res, err := Analyze(ir, sampleRate, opts)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Bands) != 7 {
		t.Fatalf("bands = %d, want 7", len(res.Bands))
	}

	for i, b := range res.Bands {
		if want := []float64{125, 250, 500, 1000, 2000, 4000, 8000}[i]; b.CenterFrequency != want {
			t.Errorf("band %d centre = %v, want %v", i, b.CenterFrequency, want)
		}

		if b.RT60 == nil {
			t.Errorf("%.0f Hz: no RT60 (%s)", b.CenterFrequency, b.Error)
			continue
		}

		testutil.RequireWithinRel(t, "band RT60", *b.RT60, rt60, 0.25)
	}
}

func TestAnalyzeBandsPassThrough(t *testing.T) {
	ir := testutil.DecayingNoise(5, 16000, 0.5, 1)

	opts := DefaultOptions()
	opts.BandLimited = true
	opts.BandFilter = BandFilterPassThrough

	res, err := Analyze(ir, 16000, opts)
	if err != nil {
		t.Fatal(err)
	}

	requirePassThroughBands(t, res)
}

func TestBandLimitedZeroValuePassesThrough(t *testing.T) {
	ir := testutil.DecayingNoise(5, 16000, 0.5, 1)

	res, err := Analyze(ir, 16000, Options{OnsetOffset: 0.005, BandLimited: true})
	if err != nil {
		t.Fatal(err)
	}

	requirePassThroughBands(t, res)

	if DefaultOptions().BandFilter != BandFilterOctave {
		t.Errorf("DefaultOptions().BandFilter = %v, want BandFilterOctave", DefaultOptions().BandFilter)
	}
}

func requirePassThroughBands(t *testing.T, res *Analysis) {
	t.Helper()

	// The 8 kHz octave reaches Nyquist at 16 kHz.
	if len(res.Bands) != 6 {
		t.Fatalf("bands = %d, want 6", len(res.Bands))
	}

	if res.Broadband.RT60 == nil {
		t.Fatalf("broadband RT60 missing: %s", res.Broadband.Error)
	}

	for _, b := range res.Bands {
		if b.RT60 == nil || *b.RT60 != *res.Broadband.RT60 {
			t.Errorf("%.0f Hz: RT60 %v differs from broadband %v", b.CenterFrequency, b.RT60, *res.Broadband.RT60)
		}
	}
}

func TestRT60(t *testing.T) {
	a := NewAnalyzer(48000)

	rt, err := a.RT60(testutil.ExponentialDecay(48000, 1.2, 4))
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireWithinRel(t, "RT60", rt, 1.2, 0.02)

	if _, err := a.RT60([]float64{1.0, 0.5}); !errors.Is(err, ErrNoDecay) {
		t.Errorf("RT60(2 samples) = %v, want ErrNoDecay", err)
	}
}

func TestSchroederIntegral(t *testing.T) {
	a := NewAnalyzer(48000)

	got, err := a.SchroederIntegral([]float64{1, 1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}

	want := []float64{0, 10 * math.Log10(0.75), 10 * math.Log10(0.5), 10 * math.Log10(0.25)}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)

	got, _ = a.SchroederIntegral([]float64{1, 0})
	if got[1] != edcFloorDB {
		t.Errorf("zero tail = %v dB, want %v", got[1], edcFloorDB)
	}

	if _, err := a.SchroederIntegral(nil); !errors.Is(err, ErrEmptyIR) {
		t.Errorf("SchroederIntegral(nil) = %v, want ErrEmptyIR", err)
	}
}

func TestDefinition(t *testing.T) {
	sampleRate := 48000.0

	t.Run("all_early_energy", func(t *testing.T) {
		// Very short IR: all energy within 50ms
		ir := make([]float64, int(sampleRate*0.01)) // 10ms
		ir[0] = 1.0
		analyzer := NewAnalyzer(sampleRate)

		d50, err := analyzer.Definition(ir, 50)
		if err != nil {
			t.Fatal(err)
		}
		if d50 != 1.0 {
			t.Errorf("D50 = %.3f, want 1.0 for all-early IR", d50)
		}
	})

	t.Run("split_energy", func(t *testing.T) {
		// Equal impulses at t=0 and t=100ms
		ir := make([]float64, int(sampleRate*0.2))
		ir[0] = 1.0
		reflSample := int(100 * 0.001 * sampleRate) // 100ms
		ir[reflSample] = 1.0

		analyzer := NewAnalyzer(sampleRate)

		d50, err := analyzer.Definition(ir, 50)
		if err != nil {
			t.Fatal(err)
		}
		// Only the first impulse is within 50ms, so D50 ≈ 0.5
		if math.Abs(d50-0.5) > 0.01 {
			t.Errorf("D50 = %.3f, want ~0.5", d50)
		}

		d80, err := analyzer.Definition(ir, 80)
		if err != nil {
			t.Fatal(err)
		}
		// Only the first impulse is within 80ms, so D80 ≈ 0.5
		if math.Abs(d80-0.5) > 0.01 {
			t.Errorf("D80 = %.3f, want ~0.5", d80)
		}
	})

	t.Run("validation", func(t *testing.T) {
		analyzer := NewAnalyzer(48000)
		_, err := analyzer.Definition(nil, 50)
		if !errors.Is(err, ErrEmptyIR) {
			t.Errorf("Definition(nil) = %v, want ErrEmptyIR", err)
		}
		_, err = analyzer.Definition([]float64{1}, 0)
		if !errors.Is(err, ErrInvalidTime) {
			t.Errorf("Definition(t=0) = %v, want ErrInvalidTime", err)
		}
		_, err = analyzer.Definition([]float64{1}, -10)
		if !errors.Is(err, ErrInvalidTime) {
			t.Errorf("Definition(t=-10) = %v, want ErrInvalidTime", err)
		}
	})
}

func TestClarity(t *testing.T) {
	sampleRate := 48000.0

	t.Run("equal_split", func(t *testing.T) {
		// Equal impulses at t=0 and t=100ms → C80 = 0 dB (early == late)
		ir := make([]float64, int(sampleRate*0.2))
		ir[0] = 1.0
		reflSample := int(100 * 0.001 * sampleRate)
		ir[reflSample] = 1.0

		analyzer := NewAnalyzer(sampleRate)

		c80, err := analyzer.Clarity(ir, 80)
		if err != nil {
			t.Fatal(err)
		}
		// With boundary at 80ms, first impulse is early, second is late
		// Equal energy → C80 = 0 dB
		if math.Abs(c80) > 0.1 {
			t.Errorf("C80 = %.3f dB, want ~0 dB for equal early/late", c80)
		}
	})

	t.Run("mostly_early", func(t *testing.T) {
		// Strong early, weak late
		ir := make([]float64, int(sampleRate*0.2))
		ir[0] = 1.0
		reflSample := int(100 * 0.001 * sampleRate)
		ir[reflSample] = 0.1

		analyzer := NewAnalyzer(sampleRate)

		c80, err := analyzer.Clarity(ir, 80)
		if err != nil {
			t.Fatal(err)
		}
		// Early energy = 1.0, late = 0.01 → C80 = 10*log10(1/0.01) = 20 dB
		expected := 10 * math.Log10(1.0/0.01)
		if math.Abs(c80-expected) > 0.1 {
			t.Errorf("C80 = %.1f dB, want ~%.1f dB", c80, expected)
		}
	})

	t.Run("validation", func(t *testing.T) {
		analyzer := NewAnalyzer(48000)
		_, err := analyzer.Clarity(nil, 80)
		if !errors.Is(err, ErrEmptyIR) {
			t.Errorf("Clarity(nil) = %v, want ErrEmptyIR", err)
		}
		_, err = analyzer.Clarity([]float64{1}, 0)
		if !errors.Is(err, ErrInvalidTime) {
			t.Errorf("Clarity(t=0) = %v, want ErrInvalidTime", err)
		}
	})
}

func TestCenterTime(t *testing.T) {
	sampleRate := 48000.0

	t.Run("single_impulse", func(t *testing.T) {
		// Single impulse at t=0 → center time = 0
		ir := make([]float64, 1000)
		ir[0] = 1.0

		analyzer := NewAnalyzer(sampleRate)
		ct, err := analyzer.CenterTime(ir)
		if err != nil {
			t.Fatal(err)
		}
		if ct != 0 {
			t.Errorf("CenterTime = %g, want 0 for impulse at t=0", ct)
		}
	})

	t.Run("two_equal_impulses", func(t *testing.T) {
		// Equal impulses at t=0 and t=100ms → center = 50ms
		ir := make([]float64, int(sampleRate*0.2))
		ir[0] = 1.0
		reflSample := int(100 * 0.001 * sampleRate)
		ir[reflSample] = 1.0

		analyzer := NewAnalyzer(sampleRate)
		ct, err := analyzer.CenterTime(ir)
		if err != nil {
			t.Fatal(err)
		}

		expected := 0.05 // 50ms
		if math.Abs(ct-expected) > 0.001 {
			t.Errorf("CenterTime = %.4f, want ~%.4f", ct, expected)
		}
	})

	t.Run("validation", func(t *testing.T) {
		analyzer := NewAnalyzer(48000)
		_, err := analyzer.CenterTime(nil)
		if !errors.Is(err, ErrEmptyIR) {
			t.Errorf("CenterTime(nil) = %v, want ErrEmptyIR", err)
		}
	})
}

func TestFindImpulseStart(t *testing.T) {
	sampleRate := 48000.0

	t.Run("immediate_start", func(t *testing.T) {
		ir := make([]float64, 1000)
		ir[0] = 1.0

		analyzer := NewAnalyzer(sampleRate)
		idx, err := analyzer.FindImpulseStart(ir)
		if err != nil {
			t.Fatal(err)
		}
		if idx != 0 {
			t.Errorf("FindImpulseStart = %d, want 0", idx)
		}
	})

	t.Run("delayed_start", func(t *testing.T) {
		ir := make([]float64, 10000)
		// Silence then impulse at sample 5000
		ir[5000] = 1.0
		ir[5001] = 0.5

		analyzer := NewAnalyzer(sampleRate)
		idx, err := analyzer.FindImpulseStart(ir)
		if err != nil {
			t.Fatal(err)
		}
		// Threshold is 10% of peak, so should find sample 5000
		if idx != 5000 {
			t.Errorf("FindImpulseStart = %d, want 5000", idx)
		}
	})

	t.Run("noise_floor", func(t *testing.T) {
		ir := make([]float64, 10000)
		// Low-level noise before the impulse
		for i := 0; i < 5000; i++ {
			ir[i] = 0.001 * float64(i%2*2-1)
		}
		ir[5000] = 1.0

		analyzer := NewAnalyzer(sampleRate)
		idx, err := analyzer.FindImpulseStart(ir)
		if err != nil {
			t.Fatal(err)
		}
		// Noise is 0.001, peak is 1.0, threshold is 0.1 → should find sample 5000
		if idx != 5000 {
			t.Errorf("FindImpulseStart = %d, want 5000", idx)
		}
	})

	t.Run("empty", func(t *testing.T) {
		analyzer := NewAnalyzer(48000)
		_, err := analyzer.FindImpulseStart(nil)
		if !errors.Is(err, ErrEmptyIR) {
			t.Errorf("FindImpulseStart(nil) = %v, want ErrEmptyIR", err)
		}
	})
}

func TestAnalyzeValidation(t *testing.T) {
	if _, err := Analyze(nil, 48000, DefaultOptions()); !errors.Is(err, ErrEmptyIR) {
		t.Errorf("Analyze(nil) = %v, want ErrEmptyIR", err)
	}

	for _, sr := range []float64{0, -1, math.NaN()} {
		if _, err := Analyze([]float64{1}, sr, DefaultOptions()); !errors.Is(err, ErrInvalidSampleRate) {
			t.Errorf("Analyze(sr=%v) = %v, want ErrInvalidSampleRate", sr, err)
		}
	}
}

func TestMetadataEnergyRatios(t *testing.T) {
	// D(t) and C(t) are related: C(t) = 10*log10(D(t)/(1-D(t)))
	res, err := Analyze(testutil.ExponentialDecay(48000, 1.0, 3.0), 48000, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	m := res.Metadata
	if m.PeakIndex != 0 {
		t.Errorf("PeakIndex = %d, want 0", m.PeakIndex)
	}

	for _, pair := range [][2]float64{{m.D50, m.C50}, {m.D80, m.C80}} {
		d, c := pair[0], pair[1]
		if d <= 0 || d >= 1 {
			t.Fatalf("D = %v, want in (0, 1)", d)
		}

		if want := 10 * math.Log10(d/(1-d)); math.Abs(c-want) > 0.01 {
			t.Errorf("C = %.3f, expected %.3f from D = %.3f", c, want, d)
		}
	}

	if m.CenterTime <= 0 || m.CenterTime > 1 {
		t.Errorf("CenterTime = %.3f, expected in (0, 1]", m.CenterTime)
	}
}

func BenchmarkAnalyze(b *testing.B) {
	ir := testutil.DecayingNoise(1, 48000, 1, 2)
	opts := DefaultOptions()
	opts.BandLimited = true

	for b.Loop() {
		if _, err := Analyze(ir, 48000, opts); err != nil {
			b.Fatal(err)
		}
	}
}
