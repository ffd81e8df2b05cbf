package testutil

import "testing"

func TestRequireHelpersPass(t *testing.T) {
	RequireSliceNearlyEqual(t, []float64{1, 2}, []float64{1, 2.05}, 0.1)
	RequireFinite(t, []float64{0, -1, 1e300})
	RequireWithinRel(t, "x", 1.04, 1, 0.05)
}

func TestMaxAbs(t *testing.T) {
	v, idx := MaxAbs([]float64{0.5, -2, 1})
	if v != 2 || idx != 1 {
		t.Fatalf("MaxAbs = (%v, %d), want (2, 1)", v, idx)
	}
}
