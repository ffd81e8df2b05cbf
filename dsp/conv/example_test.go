package conv_test

import (
	"fmt"

	"github.com/cwbudde/qualia-nss/dsp/conv"
)

func ExampleDirect() {
	signal := []float64{1, 2, 3, 4, 5, 4, 3, 2, 1}
	kernel := []float64{0.25, 0.5, 0.25}

	result, _ := conv.Direct(signal, kernel)

	fmt.Printf("Output length: %d\n", len(result))
	fmt.Printf("First few values: %.2f, %.2f, %.2f\n", result[0], result[1], result[2])

	// Output:
	// Output length: 11
	// First few values: 0.25, 1.00, 2.00
}

func ExampleDeconvolve() {
	excitation := []float64{1, 0.5, 0, 0}
	response := []float64{0, 1, 0.5, 0, 0} // excitation delayed by one sample

	h, _ := conv.Deconvolve(response, excitation, conv.DeconvOptions{Epsilon: 1e-12})

	peak := 0
	for i := range h {
		if h[i] > h[peak] {
			peak = i
		}
	}

	fmt.Printf("length %d, peak at lag %d = %.3f\n", len(h), peak, h[peak])

	// Output:
	// length 8, peak at lag 1 = 1.000
}
