// Package wavio reads and writes PCM WAV files as float64 sample buffers
// in the range [-1, 1].
package wavio

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// Errors returned by Read and Write.
var (
	ErrInvalidFile    = errors.New("wavio: invalid WAV file")
	ErrUnsupported    = errors.New("wavio: unsupported sample format")
	ErrInvalidRate    = errors.New("wavio: sample rate must be > 0")
	ErrInvalidSamples = errors.New("wavio: no samples")
)

// Audio is a decoded WAV file reduced to one channel.
type Audio struct {
	Samples    []float64
	SampleRate int
	Channels   int // channel count of the file
	BitDepth   int
}

// Duration returns the length in seconds.
func (a Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}

	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// Read decodes the first channel of the PCM WAV file at path.
func Read(path string) (Audio, error) {
	return read(path, false)
}

// ReadMono decodes the PCM WAV file at path and averages all channels.
func ReadMono(path string) (Audio, error) {
	return read(path, true)
}

func read(path string, mix bool) (Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return Audio{}, fmt.Errorf("wavio: could not open file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Audio{}, fmt.Errorf("%w: %s", ErrInvalidFile, path)
	}

	if dec.WavAudioFormat != wavFormatPCM {
		return Audio{}, fmt.Errorf("%w: format tag %d", ErrUnsupported, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Audio{}, fmt.Errorf("wavio: could not read PCM buffer: %w", err)
	}

	depth := buf.SourceBitDepth
	offset, scale, err := pcmScale(depth)
	if err != nil {
		return Audio{}, err
	}

	chans := buf.Format.NumChannels
	frames := len(buf.Data) / chans
	out := make([]float64, frames)

	for i := range out {
		frame := buf.Data[i*chans : (i+1)*chans]
		if !mix {
			out[i] = float64(frame[0]-offset) / scale
			continue
		}

		sum := 0.0
		for _, v := range frame {
			sum += float64(v-offset) / scale
		}

		out[i] = sum / float64(chans)
	}

	return Audio{
		Samples:    out,
		SampleRate: buf.Format.SampleRate,
		Channels:   chans,
		BitDepth:   depth,
	}, nil
}

// Write encodes samples as a mono PCM WAV file of the given bit depth
// (8, 16, 24 or 32). Samples outside [-1, 1] are clipped.
func Write(path string, samples []float64, sampleRate, bitDepth int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRate, sampleRate)
	}

	if len(samples) == 0 {
		return ErrInvalidSamples
	}

	offset, scale, err := pcmScale(bitDepth)
	if err != nil {
		return err
	}

	data := make([]int, len(samples))
	maxInt := scale - 1

	for i, s := range samples {
		v := math.Round(math.Max(-1, math.Min(1, s)) * scale)
		data[i] = int(math.Min(v, maxInt)) + offset
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavio: output file creation error: %w", err)
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, 1, wavFormatPCM)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		_ = f.Close()

		return fmt.Errorf("wavio: data writing error: %w", err)
	}

	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("wavio: finalising file: %w", err)
	}

	return f.Close()
}

// pcmScale returns the offset removed from stored values and the full
// scale of a bit depth. 8-bit WAV stores unsigned samples.
func pcmScale(bitDepth int) (offset int, scale float64, err error) {
	switch bitDepth {
	case 8:
		return 128, 128, nil
	case 16, 24, 32:
		return 0, math.Ldexp(1, bitDepth-1), nil
	default:
		return 0, 0, fmt.Errorf("%w: %d-bit", ErrUnsupported, bitDepth)
	}
}
