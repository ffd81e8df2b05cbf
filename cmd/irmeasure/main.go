// Command irmeasure runs room-acoustic measurements on WAV files.
//
// Usage:
//
//	irmeasure [-v] <command> [flags]
//
// Commands:
//
//	sweep    write an exponential sine sweep (and optionally its inverse filter)
//	extract  deconvolve a sweep recording into an impulse response and report decay times
//	rt60     report decay times and energy ratios of an impulse response
//	rta      run a WAV file through the real-time analyser and report peaks and comb filtering
//
// Examples:
//
//	irmeasure sweep -duration 5 -out sweep.wav
//	irmeasure extract -in recording.wav -duration 5 -out ir.wav
//	irmeasure rt60 -in ir.wav
//	irmeasure rta -in room.wav -fft 8192 -delay 1.5
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var errUsage = errors.New("usage")

func main() {
	verbose := flag.Bool("v", false, "human-readable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: irmeasure [-v] <command> [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  sweep    write an exponential sine sweep\n")
		fmt.Fprintf(os.Stderr, "  extract  extract an impulse response from a sweep recording\n")
		fmt.Fprintf(os.Stderr, "  rt60     analyse the decay of an impulse response\n")
		fmt.Fprintf(os.Stderr, "  rta      spectrum and comb-filter analysis of a recording\n\n")
		fmt.Fprintf(os.Stderr, "Run 'irmeasure <command> -h' for command flags.\n")
	}
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to create logger: %v\n", err)
		os.Exit(1)
	}

	code := 0
	if err := run(flag.Args(), os.Stdout, logger); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
		}

		if !errors.Is(err, flag.ErrHelp) {
			logger.Error("command failed", zap.Error(err))
			code = 1
		}
	}

	_ = logger.Sync()
	os.Exit(code)
}

// newLogger returns a JSON production logger on stderr, or a development
// console logger when verbose is set.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}

	return cfg.Build()
}

func run(args []string, out io.Writer, log *zap.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	cmd, rest := args[0], args[1:]
	log = log.With(zap.String("command", cmd))

	switch cmd {
	case "sweep":
		return runSweep(rest, out, log)
	case "extract":
		return runExtract(rest, out, log)
	case "rt60":
		return runRT60(rest, out, log)
	case "rta":
		return runRTA(rest, out, log)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}
