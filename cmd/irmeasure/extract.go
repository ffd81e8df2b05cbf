package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/cwbudde/qualia-nss/dsp/conv"
	"github.com/cwbudde/qualia-nss/internal/wavio"
	"github.com/cwbudde/qualia-nss/measure/impulse"
	"github.com/cwbudde/qualia-nss/measure/ir"
	"github.com/cwbudde/qualia-nss/measure/thd"
	timestats "github.com/cwbudde/qualia-nss/stats/time"
	"go.uber.org/zap"
)

// lowLevelDB is the recording peak below which a warning is logged.
const lowLevelDB = -40.0

var (
	errMissingInput  = errors.New("missing -in")
	errReferenceKind = errors.New("reference kind must be inverse or excitation")
	errRateMismatch  = errors.New("reference sample rate differs from recording")
	errDistortionRef = errors.New("distortion analysis needs the sweep flags instead of -reference")
)

func runExtract(args []string, out io.Writer, log *zap.Logger) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	sf := addSweepFlags(fs)
	in := fs.String("in", "", "recording WAV (required)")
	refPath := fs.String("reference", "", "reference WAV; default regenerates the inverse filter from the sweep flags")
	kind := fs.String("kind", "inverse", "reference kind: inverse or excitation")
	eps := fs.Float64("eps", conv.DefaultEpsilon, "regularisation epsilon")
	windowStart := fs.Float64("window-start", 0.005, "window start after the onset in seconds")
	windowLen := fs.Float64("window", 2, "window length in seconds")
	outPath := fs.String("out", "", "optional output WAV for the impulse response")
	bands := fs.Bool("bands", true, "report octave-band decay times")
	distortion := fs.Bool("distortion", false, "report harmonic distortion (requires the sweep flags and no -reference)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *in == "" {
		return errMissingInput
	}

	rec, err := wavio.ReadMono(*in)
	if err != nil {
		return err
	}

	checkLevels(log, *in, rec.Samples)

	sampleRate := float64(rec.SampleRate)

	ref, refKind, err := loadReference(*refPath, *kind, sf, rec.SampleRate)
	if err != nil {
		return err
	}

	opts := impulse.DefaultOptions()
	opts.SampleRate = sampleRate
	opts.Regularization = *eps
	opts.WindowStart = *windowStart
	opts.WindowLength = *windowLen
	opts.Reference = refKind

	res, err := impulse.Extract(rec.Samples, ref, opts)
	if err != nil {
		return err
	}

	log.Info("impulse response extracted",
		zap.String("reference", refKind.String()),
		zap.Int("onset_sample", res.OnsetIndex),
		zap.Float64("onset_s", res.OnsetTime),
		zap.Float64("max_amplitude", res.Metadata.MaxAmplitude),
		zap.Int("length", res.Length))

	if res.Metadata.MaxAmplitude == 0 {
		log.Warn("impulse response is silent")
	}

	if *outPath != "" {
		if err := wavio.Write(*outPath, res.ImpulseResponse, rec.SampleRate, 24); err != nil {
			return err
		}

		log.Info("impulse response written", zap.String("path", *outPath))
	}

	fmt.Fprintf(out, "impulse response: %d samples (%.3f s), onset %.4f s (sample %d)\n\n",
		res.Length, res.Duration, res.OnsetTime, res.OnsetIndex)

	resp, err := impulse.FrequencyResponse(res.ImpulseResponse, sampleRate, 0)
	if err != nil {
		return err
	}

	if err := printResponse(out, resp); err != nil {
		return err
	}

	irOpts := ir.DefaultOptions()
	irOpts.BandLimited = *bands

	analysis, err := ir.Analyze(res.ImpulseResponse, sampleRate, irOpts)
	if err != nil {
		return err
	}

	logDecay(log, analysis)

	if err := printDecay(out, analysis); err != nil {
		return err
	}

	if !*distortion {
		return nil
	}

	if *refPath != "" {
		return errDistortionRef
	}

	dist, err := thd.FromSweep(sf.sweep(sampleRate), rec.Samples, 0)
	if err != nil {
		return err
	}

	log.Info("harmonic distortion", zap.Float64("thd", dist.THD), zap.Float64("thd_db", dist.THDdB))

	return printDistortion(out, dist)
}

func loadReference(path, kind string, sf sweepFlags, sampleRate int) ([]float64, impulse.ReferenceKind, error) {
	var refKind impulse.ReferenceKind

	switch kind {
	case "inverse":
		refKind = impulse.ReferenceInverseFilter
	case "excitation":
		refKind = impulse.ReferenceExcitation
	default:
		return nil, 0, fmt.Errorf("%w: %q", errReferenceKind, kind)
	}

	if path != "" {
		ref, err := wavio.ReadMono(path)
		if err != nil {
			return nil, 0, err
		}

		if ref.SampleRate != sampleRate {
			return nil, 0, fmt.Errorf("%w: %d != %d", errRateMismatch, ref.SampleRate, sampleRate)
		}

		return ref.Samples, refKind, nil
	}

	s := sf.sweep(float64(sampleRate))
	if refKind == impulse.ReferenceExcitation {
		ref, err := s.Generate()
		return ref, refKind, err
	}

	ref, err := s.InverseFilter()

	return ref, refKind, err
}

// checkLevels logs the level of a recording and warns about clipping or a
// level too low for a usable measurement.
func checkLevels(log *zap.Logger, name string, x []float64) {
	s := timestats.Calculate(x)

	log.Info("recording level",
		zap.String("path", name),
		zap.Int("samples", s.Length),
		zap.Float64("peak_dbfs", s.PeakdB),
		zap.Float64("rms_dbfs", s.RMSdB),
		zap.Float64("crest_db", s.CrestFactorDB),
		zap.Float64("dc", s.DC))

	switch {
	case s.Peak == 0:
		log.Warn("recording is silent", zap.String("path", name))
	case s.Clipped > 0:
		log.Warn("recording is clipped", zap.String("path", name), zap.Int("clipped_samples", s.Clipped))
	case s.PeakdB < lowLevelDB:
		log.Warn("recording level is low", zap.String("path", name), zap.Float64("peak_dbfs", s.PeakdB))
	}
}

func logDecay(log *zap.Logger, a *ir.Analysis) {
	b := a.Broadband
	if b.RT60 == nil {
		log.Warn("no broadband decay estimate", zap.String("reason", b.Error), zap.Float64("decay_range_db", b.DecayRange))
		return
	}

	log.Info("broadband decay",
		zap.Float64("rt60_s", *b.RT60),
		zap.Float64("confidence", b.Confidence),
		zap.Float64("decay_range_db", b.DecayRange))
}
