package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/cwbudde/qualia-nss/dsp/core"
	"github.com/cwbudde/qualia-nss/internal/wavio"
	"github.com/cwbudde/qualia-nss/measure/sweep"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

var errLevel = errors.New("level must be in (0, 1]")

// sweepFlags registers the flags describing a sweep.
type sweepFlags struct {
	start, end, duration *float64
}

func addSweepFlags(fs *flag.FlagSet) sweepFlags {
	return sweepFlags{
		start:    fs.Float64("start", 20, "sweep start frequency in Hz"),
		end:      fs.Float64("end", 20000, "sweep end frequency in Hz"),
		duration: fs.Float64("duration", 5, "sweep duration in seconds"),
	}
}

func (f sweepFlags) sweep(sampleRate float64) *sweep.LogSweep {
	return &sweep.LogSweep{
		StartFreq:  *f.start,
		EndFreq:    *f.end,
		Duration:   *f.duration,
		SampleRate: sampleRate,
	}
}

func runSweep(args []string, out io.Writer, log *zap.Logger) error {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	sf := addSweepFlags(fs)
	rate := fs.Int("rate", 48000, "sample rate in Hz")
	level := fs.Float64("level", 0.5, "peak amplitude of the sweep (0..1]")
	bits := fs.Int("bits", 24, "WAV bit depth (16, 24 or 32)")
	outPath := fs.String("out", "sweep.wav", "output WAV for the sweep")
	invPath := fs.String("inverse", "", "optional output WAV for the peak-normalised inverse filter")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if !(*level > 0 && *level <= 1) {
		return fmt.Errorf("%w: %v", errLevel, *level)
	}

	s := sf.sweep(float64(*rate))

	sig, err := s.Generate()
	if err != nil {
		return err
	}

	floats.Scale(*level, sig)

	if err := wavio.Write(*outPath, sig, *rate, *bits); err != nil {
		return err
	}

	log.Info("sweep written",
		zap.String("path", *outPath),
		zap.Float64("start_hz", s.StartFreq),
		zap.Float64("end_hz", s.EndFreq),
		zap.Float64("duration_s", s.Duration),
		zap.Int("samples", len(sig)))

	if *invPath != "" {
		inv, err := s.InverseFilter()
		if err != nil {
			return err
		}

		peak := core.NormalizePeak(inv)

		if err := wavio.Write(*invPath, inv, *rate, *bits); err != nil {
			return err
		}

		log.Info("inverse filter written", zap.String("path", *invPath), zap.Float64("peak_before_normalisation", peak))
	}

	fmt.Fprintf(out, "sweep: %s, %.0f-%.0f Hz, %.2f s, %d samples at %d Hz\n",
		*outPath, s.StartFreq, s.EndFreq, s.Duration, len(sig), *rate)

	return printHarmonicOffsets(out, s)
}
