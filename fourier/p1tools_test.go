package fourier

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func TestExpGolombRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOf(rapid.Int64Range(-1<<20, 1<<20)).Draw(t, "data")
		encoded := expGolombEncode(data)
		got := expGolombDecode(encoded)
		if len(data) == 0 {
			return
		}
		if !reflect.DeepEqual(got, data) {
			t.Fatalf("expGolombDecode(expGolombEncode(%v)) = %v", data, got)
		}
	})
}

func TestExpGolombEmpty(t *testing.T) {
	if got := expGolombDecode(expGolombEncode(nil)); len(got) != 0 {
		t.Errorf("round trip of empty data = %v, want empty", got)
	}
}

func TestQuantDequantRoundTrip(t *testing.T) {
	for _, x := range []float64{0, 1, -1, 100, -100, 0.5, -0.5} {
		got := dequant(quant(x))
		if d := got - x; d > 1e-9 || d < -1e-9 {
			t.Errorf("dequant(quant(%v)) = %v", x, got)
		}
	}
}
