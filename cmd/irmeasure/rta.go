package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/cwbudde/qualia-nss/dsp/spectrum"
	"github.com/cwbudde/qualia-nss/internal/wavio"
	"github.com/cwbudde/qualia-nss/measure/rta"
	"go.uber.org/zap"
)

var errHop = errors.New("hop must be > 0")

func runRTA(args []string, out io.Writer, log *zap.Logger) error {
	fs := flag.NewFlagSet("rta", flag.ContinueOnError)
	in := fs.String("in", "", "recording WAV (required)")
	fftSize := fs.Int("fft", 8192, "FFT size (power of two)")
	hop := fs.Int("hop", 0, "samples between frames; 0 uses the FFT size")
	smoothing := fs.Float64("smoothing", spectrum.DefaultSmoothing, "analyser smoothing time constant [0, 1)")
	hold := fs.Duration("hold", rta.DefaultPeakHoldTime, "peak-hold time")
	delayMs := fs.Float64("delay", 0, "expected comb-filter delay in ms; 0 scores spacing only")
	top := fs.Int("peaks", 8, "number of peak-hold peaks to list")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *in == "" {
		return errMissingInput
	}

	if *hop == 0 {
		*hop = *fftSize
	}

	if *hop < 0 {
		return fmt.Errorf("%w: %d", errHop, *hop)
	}

	a, err := wavio.ReadMono(*in)
	if err != nil {
		return err
	}

	an, err := spectrum.NewAnalyser(*fftSize, spectrum.WithSmoothing(*smoothing))
	if err != nil {
		return err
	}

	sr := float64(a.SampleRate)

	meter, err := rta.New(sr, *fftSize, rta.WithPeakHoldTime(*hold))
	if err != nil {
		return err
	}

	// Frames are timestamped by their position in the file.
	var start time.Time

	frames := 0

	for pos := 0; pos+*fftSize <= len(a.Samples); pos += *hop {
		snap, err := an.Snapshot(a.Samples[pos : pos+*fftSize])
		if err != nil {
			return err
		}

		at := start.Add(time.Duration(float64(pos+*fftSize) / sr * float64(time.Second)))
		meter.AnalyzeAt(snap, at)
		frames++
	}

	if frames == 0 {
		snap, err := an.Snapshot(a.Samples)
		if err != nil {
			return err
		}

		meter.AnalyzeAt(snap, start)
		frames = 1
	}

	expected := *delayMs / 1000
	current := meter.DetectCombFiltering(expected)
	averaged := rta.DetectCombFiltering(meter.Average(), sr, *fftSize, expected)

	log.Info("analysis finished",
		zap.String("path", *in),
		zap.Int("frames", frames),
		zap.Bool("comb_detected", averaged.Detected),
		zap.Float64("comb_confidence", averaged.Confidence))

	fmt.Fprintf(out, "rta: %s, %d frames of %d samples at %d Hz\n\n", *in, frames, *fftSize, a.SampleRate)

	if err := printComb(out, []combRow{{"current", current}, {"average", averaged}}); err != nil {
		return err
	}

	peaks := rta.FindPeaks(meter.PeakHold(), sr, *fftSize, rta.DefaultPeakThreshold, rta.DefaultMinDistance)

	return printPeaks(out, peaks, *top, meter.Features())
}
