package testutil

import (
	"math"
	"testing"

	"github.com/cwbudde/qualia-nss/dsp/core"
)

// RequireSliceNearlyEqual fails t on a length mismatch or on the first
// element pair further apart than eps.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i, g := range got {
		if d := math.Abs(g - want[i]); d > eps {
			t.Fatalf("[%d] = %v, want %v (|diff| %g > %g)", i, g, want[i], d, eps)
		}
	}
}

// RequireFinite fails t on the first NaN or Inf in data.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()

	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("[%d] is not finite: %v", i, v)
		}
	}
}

// RequireWithinRel fails t unless |got-want| <= rel*|want|.
func RequireWithinRel(t *testing.T, name string, got, want, rel float64) {
	t.Helper()

	if math.IsNaN(got) || math.Abs(got-want) > rel*math.Abs(want) {
		t.Fatalf("%s = %v, want %v ±%.1f%%", name, got, want, rel*100)
	}
}

// MaxAbs returns the largest absolute value in x and its index.
func MaxAbs(x []float64) (float64, int) {
	return core.MaxAbs(x)
}
