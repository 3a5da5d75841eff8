package fourier

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestDCTIDCTRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 64).Draw(t, "n")
		x := make([]float64, n)
		for i := range x {
			x[i] = rapid.Float64Range(-1, 1).Draw(t, "x")
		}

		got := IDCT(DCT(x))
		for i := range x {
			if math.Abs(got[i]-x[i]) > 1e-9 {
				t.Fatalf("IDCT(DCT(x))[%d] = %v, want %v", i, got[i], x[i])
			}
		}
	})
}

func TestDCTEmpty(t *testing.T) {
	if got := DCT(nil); len(got) != 0 {
		t.Errorf("DCT(nil) = %v, want empty", got)
	}
	if got := IDCT(nil); len(got) != 0 {
		t.Errorf("IDCT(nil) = %v, want empty", got)
	}
}
