package pcm

import (
	"math"
	"testing"
)

func TestStringFromStringRoundTrip(t *testing.T) {
	formats := []SampleFormat{U8, S16LE, S16BE, S24LE, S24BE, S32LE, S32BE, F32LE, F32BE, F64LE, F64BE}
	for _, f := range formats {
		got, err := SFFromString(f.String())
		if err != nil {
			t.Fatalf("SFFromString(%q) returned error: %v", f.String(), err)
		}
		if got != f {
			t.Errorf("SFFromString(%q) = %v, want %v", f.String(), got, f)
		}
	}
}

func TestFromStringUnknown(t *testing.T) {
	if _, err := SFFromString("bogus"); err == nil {
		t.Error("SFFromString(\"bogus\") did not return an error")
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	formats := []SampleFormat{S16LE, S16BE, S24LE, S24BE, S32LE, S32BE, F32LE, F32BE, F64LE, F64BE}
	samples := [][]float64{
		{0.5, -0.5},
		{0, 0.999},
		{-1, 1},
	}
	for _, f := range formats {
		data := Pack(samples, f)
		got := Unpack(data, 2, f)
		if len(got) != len(samples) {
			t.Fatalf("%v: Unpack returned %d samples, want %d", f, len(got), len(samples))
		}
		tol := tolerance(f)
		for i := range samples {
			for c := range samples[i] {
				if math.Abs(got[i][c]-samples[i][c]) > tol {
					t.Errorf("%v: sample[%d][%d] = %v, want %v (±%v)", f, i, c, got[i][c], samples[i][c], tol)
				}
			}
		}
	}
}

func tolerance(f SampleFormat) float64 {
	switch f {
	case F32LE, F32BE, F64LE, F64BE:
		return 1e-6
	case S24LE, S24BE, S32LE, S32BE:
		return 1e-5
	default:
		return 1e-3
	}
}

func TestDataSize(t *testing.T) {
	got := DataSize(48000, 2, 16, 1.0)
	want := 2 * 48000 * 2
	if got != want {
		t.Errorf("DataSize() = %d, want %d", got, want)
	}
}
