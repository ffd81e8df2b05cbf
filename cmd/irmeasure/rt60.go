package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/cwbudde/qualia-nss/internal/wavio"
	"github.com/cwbudde/qualia-nss/measure/ir"
	"go.uber.org/zap"
)

func runRT60(args []string, out io.Writer, log *zap.Logger) error {
	fs := flag.NewFlagSet("rt60", flag.ContinueOnError)
	in := fs.String("in", "", "impulse response WAV (required)")
	offset := fs.Float64("offset", 0.005, "seconds skipped after the start before integration")
	minRange := fs.Float64("min-range", 20, "minimum EDC range in dB")
	bands := fs.Bool("bands", true, "report octave-band decay times")
	passThrough := fs.Bool("passthrough", false, "analyse every band on the unfiltered response")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *in == "" {
		return errMissingInput
	}

	a, err := wavio.Read(*in)
	if err != nil {
		return err
	}

	log.Debug("impulse response loaded",
		zap.String("path", *in),
		zap.Int("samples", len(a.Samples)),
		zap.Int("sample_rate", a.SampleRate),
		zap.Int("channels", a.Channels))

	opts := ir.DefaultOptions()
	opts.OnsetOffset = *offset
	opts.MinDecayRange = *minRange
	opts.BandLimited = *bands

	if *passThrough {
		opts.BandFilter = ir.BandFilterPassThrough
	}

	analysis, err := ir.Analyze(a.Samples, float64(a.SampleRate), opts)
	if err != nil {
		return err
	}

	logDecay(log, analysis)

	fmt.Fprintf(out, "impulse response: %s, %d samples at %d Hz\n\n", *in, len(a.Samples), a.SampleRate)

	return printDecay(out, analysis)
}
