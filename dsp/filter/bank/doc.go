// Package bank provides octave filter banks for band-limited acoustic
// analysis.
//
// Each band is a Butterworth highpass at the lower band edge cascaded with
// a Butterworth lowpass at the upper edge. Two constructors are offered:
//
//   - [Octave] builds IEC 61260 (base-10) octave or fractional-octave banks.
//   - [Custom] builds a bank from arbitrary centre frequencies and a
//     bandwidth in octaves; [RoomAcoustics] uses it for the seven octave
//     bands 125 Hz..8 kHz reported by reverberation analysis.
//
// Basic usage:
//
//	b := bank.RoomAcoustics(48000)
//	for i, band := range b.Bands() {
//	    filtered, _ := b.FilterBand(i, ir)
//	    fmt.Printf("%.0f Hz: %d samples\n", band.CenterFreq, len(filtered))
//	}
package bank
