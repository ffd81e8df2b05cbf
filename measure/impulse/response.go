package impulse

import (
	"fmt"
	"math"

	"github.com/cwbudde/qualia-nss/dsp/core"
	"github.com/cwbudde/qualia-nss/dsp/fft"
	"github.com/cwbudde/qualia-nss/dsp/window"
)

const magnitudeFloor = 1e-10

// Response is the frequency response of an impulse response over the
// non-redundant bins 0..fftSize/2.
type Response struct {
	Frequencies []float64 // Hz
	Magnitude   []float64 // dB
	Phase       []float64 // radians
}

// FrequencyResponse applies a Hann window to ir, zero-pads it to fftSize
// and returns magnitude and phase. fftSize 0 selects the next power of two
// of len(ir). A non-zero fftSize must be a power of two no shorter than ir.
func FrequencyResponse(ir []float64, sampleRate float64, fftSize int) (*Response, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyInput
	}

	if sampleRate <= 0 {
		return nil, ErrInvalidOptions
	}

	if fftSize == 0 {
		fftSize = fft.NextPowerOf2(len(ir))
	}

	if fftSize < len(ir) {
		return nil, fmt.Errorf("%w: fft size %d shorter than response %d", fft.ErrInvalidSize, fftSize, len(ir))
	}

	eng, err := fft.NewEngine(fftSize)
	if err != nil {
		return nil, fmt.Errorf("impulse: %w", err)
	}

	re := make([]float64, fftSize)
	im := make([]float64, fftSize)
	copy(re, ir)

	window.Apply(window.TypeHann, re[:len(ir)])

	if err := eng.RealTransform(re, im); err != nil {
		return nil, err
	}

	bins := fftSize/2 + 1
	mag := fft.Magnitude(re[:bins], im[:bins])

	resp := &Response{
		Frequencies: make([]float64, bins),
		Magnitude:   make([]float64, bins),
		Phase:       make([]float64, bins),
	}

	for k := range bins {
		resp.Frequencies[k] = float64(k) * sampleRate / float64(fftSize)
		resp.Magnitude[k] = core.AmplitudeToDBFloor(mag[k], magnitudeFloor)
		resp.Phase[k] = math.Atan2(im[k], re[k])
	}

	return resp, nil
}
