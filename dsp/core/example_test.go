package core_test

import (
	"fmt"

	"github.com/cwbudde/qualia-nss/dsp/core"
)

func ExampleNormalizePeak() {
	x := core.RemoveDC([]float64{1, 3, 1, 3})
	peak := core.NormalizePeak(x)

	fmt.Println(peak, x)

	// Output:
	// 1 [-1 1 -1 1]
}
