package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"

	"github.com/cwbudde/qualia-nss/dsp/filter/bank"
	"github.com/cwbudde/qualia-nss/dsp/spectrum"
	"github.com/cwbudde/qualia-nss/measure/impulse"
	"github.com/cwbudde/qualia-nss/measure/ir"
	"github.com/cwbudde/qualia-nss/measure/rta"
	"github.com/cwbudde/qualia-nss/measure/sweep"
	"github.com/cwbudde/qualia-nss/measure/thd"
)

// maxHarmonic is the highest distortion order listed by the sweep report.
const maxHarmonic = 5

// tableWriter collects the first write error so that table code can
// print rows unconditionally.
type tableWriter struct {
	tw  *tabwriter.Writer
	err error
}

func newTable(out io.Writer) *tableWriter {
	return &tableWriter{tw: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
}

func (t *tableWriter) row(format string, args ...any) {
	if t.err != nil {
		return
	}

	_, t.err = fmt.Fprintf(t.tw, format, args...)
}

func (t *tableWriter) flush() error {
	if t.err != nil {
		return fmt.Errorf("failed to write output row: %w", t.err)
	}

	if err := t.tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	return nil
}

func printHarmonicOffsets(out io.Writer, s *sweep.LogSweep) error {
	t := newTable(out)
	t.row("\nHarmonic\tOffset [ms]\n")
	t.row("--------\t-----------\n")

	for k := 2; k <= maxHarmonic; k++ {
		t.row("%d\t%.1f\n", k, s.HarmonicOffset(k)*1000)
	}

	return t.flush()
}

// printResponse lists the 1/3-octave smoothed magnitude at the standard
// octave centres, relative to the loudest of them.
func printResponse(out io.Writer, resp *impulse.Response) error {
	if len(resp.Frequencies) < 2 {
		return nil
	}

	freq, mag := resp.Frequencies[1:], resp.Magnitude[1:]

	smoothed, err := spectrum.SmoothFractionalOctave(freq, mag, 3)
	if err != nil {
		return err
	}

	nyquist := freq[len(freq)-1]

	var (
		centers []float64
		levels  []float64
	)

	for _, fc := range bank.StandardOctaveCenters {
		if fc >= nyquist {
			break
		}

		i := sort.SearchFloat64s(freq, fc)
		if i > 0 && (i == len(freq) || fc-freq[i-1] < freq[i]-fc) {
			i--
		}

		centers = append(centers, fc)
		levels = append(levels, smoothed[i])
	}

	if len(levels) == 0 {
		return nil
	}

	ref := math.Inf(-1)
	for _, l := range levels {
		ref = math.Max(ref, l)
	}

	t := newTable(out)
	t.row("Band [Hz]\tLevel [dB]\n")
	t.row("---------\t----------\n")

	for i, fc := range centers {
		t.row("%.0f\t%+.1f\n", fc, levels[i]-ref)
	}

	t.row("\n")

	return t.flush()
}

func printDecay(out io.Writer, a *ir.Analysis) error {
	t := newTable(out)
	t.row("Band\tEDT [s]\tT20 [s]\tT30 [s]\tRT60 [s]\tr(T30)\tConfidence\tRange [dB]\tNote\n")
	t.row("----\t-------\t-------\t-------\t--------\t------\t----------\t----------\t----\n")

	rows := append([]ir.BandResult{a.Broadband}, a.Bands...)
	for _, b := range rows {
		label := "broadband"
		if b.CenterFrequency > 0 {
			label = fmt.Sprintf("%.0f Hz", b.CenterFrequency)
		}

		t.row("%s\t%s\t%s\t%s\t%s\t%.3f\t%.2f\t%.1f\t%s\n",
			label,
			seconds(b.EDT.RT60),
			seconds(b.T20.RT60),
			seconds(b.T30.RT60),
			seconds(b.RT60),
			b.T30.Correlation,
			b.Confidence,
			b.DecayRange,
			b.Error)
	}

	m := a.Metadata
	t.row("\nC50 [dB]\tC80 [dB]\tD50\tD80\tCentre time [ms]\n")
	t.row("--------\t--------\t---\t---\t----------------\n")
	t.row("%.1f\t%.1f\t%.3f\t%.3f\t%.1f\n", m.C50, m.C80, m.D50, m.D80, m.CenterTime*1000)

	return t.flush()
}

func printDistortion(out io.Writer, res thd.Result) error {
	t := newTable(out)
	t.row("\nHarmonic\tLevel [%%]\tLevel [dB]\n")
	t.row("--------\t---------\t----------\n")

	for i, h := range res.Harmonics {
		t.row("H%d\t%.3f\t%.1f\n", i+2, h*100, 20*math.Log10(math.Max(h, 1e-10)))
	}

	t.row("THD\t%.3f\t%.1f\n", res.THD*100, res.THDdB)

	return t.flush()
}

func seconds(v *float64) string {
	if v == nil {
		return "-"
	}

	return fmt.Sprintf("%.3f", *v)
}

type combRow struct {
	name string
	d    rta.CombDetection
}

func printComb(out io.Writer, rows []combRow) error {
	t := newTable(out)
	t.row("Spectrum\tDetected\tConfidence\tDelay [ms]\tSpacing [Hz]\tNotches\tPeaks\tConsistency\tDelay match\n")
	t.row("--------\t--------\t----------\t----------\t------------\t-------\t-----\t-----------\t-----------\n")

	for _, r := range rows {
		t.row("%s\t%v\t%.2f\t%.3f\t%.1f\t%d\t%d\t%.2f\t%.2f\n",
			r.name,
			r.d.Detected,
			r.d.Confidence,
			r.d.EstimatedDelay*1000,
			r.d.NotchSpacing,
			r.d.NotchCount,
			r.d.PeakCount,
			r.d.Consistency,
			r.d.DelayMatch)
	}

	t.row("\n")

	return t.flush()
}

// printPeaks lists the n loudest peak-hold peaks and the spectral features
// of the current frame.
func printPeaks(out io.Writer, peaks []rta.Extremum, n int, f rta.Features) error {
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].Value > peaks[j].Value })

	if n < len(peaks) {
		peaks = peaks[:max(n, 0)]
	}

	t := newTable(out)
	t.row("Peak [Hz]\tLevel [dB]\n")
	t.row("---------\t----------\n")

	for _, p := range peaks {
		t.row("%.1f\t%.1f\n", p.Frequency, p.Value)
	}

	t.row("\nCentroid [Hz]\tSpread [Hz]\tRolloff [Hz]\tFlatness\n")
	t.row("-------------\t-----------\t------------\t--------\n")
	t.row("%.1f\t%.1f\t%.1f\t%.3f\n", f.Centroid, f.Spread, f.Rolloff, f.Flatness)

	return t.flush()
}
