package fourier

import (
	"math"
	"testing"
)

func bandLimitedNoise(samples, channels int, seed uint32) [][]float64 {
	pcm := make([][]float64, samples)
	state := seed
	next := func() float64 {
		// A simple xorshift generator kept deterministic for reproducible
		// tests; not used for anything cryptographic.
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		return (float64(state)/float64(1<<32))*2 - 1
	}
	for n := range pcm {
		row := make([]float64, channels)
		for c := range row {
			row[c] = 0.3 * next()
		}
		pcm[n] = row
	}
	return pcm
}

func snr(orig, decoded [][]float64) float64 {
	var signal, noise float64
	for i := range orig {
		for c := range orig[i] {
			signal += orig[i][c] * orig[i][c]
			d := orig[i][c] - decoded[i][c]
			noise += d * d
		}
	}
	if noise == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(signal/noise)
}

func TestProfile1RoundTripShape(t *testing.T) {
	pcm := bandLimitedNoise(512, 2, 12345)

	payload, depthIndex := AnalogueProfile1(pcm, 16, 48000, 0)
	if len(payload) == 0 {
		t.Fatal("AnalogueProfile1 returned empty payload")
	}

	got, err := DigitalProfile1(payload, depthIndex, 2, 48000)
	if err != nil {
		t.Fatalf("DigitalProfile1 returned error: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("DigitalProfile1 returned no samples")
	}
	for _, row := range got {
		if len(row) != 2 {
			t.Fatalf("row has %d channels, want 2", len(row))
		}
	}
}

func roundTripSNR(t *testing.T, pcm [][]float64, level uint8) float64 {
	t.Helper()
	payload, depthIndex := AnalogueProfile1(pcm, 16, 48000, level)
	got, err := DigitalProfile1(payload, depthIndex, 1, 48000)
	if err != nil {
		t.Fatalf("DigitalProfile1 returned error: %v", err)
	}
	if len(got) < len(pcm) {
		t.Fatalf("decoded length %d shorter than input %d", len(got), len(pcm))
	}
	return snr(pcm, got[:len(pcm)])
}

func TestProfile1LowLevelHasReasonableSNR(t *testing.T) {
	pcm := bandLimitedNoise(1024, 1, 999)

	ratio := roundTripSNR(t, pcm, 0)
	const minSNR = 30.0
	if ratio < minSNR {
		t.Errorf("level 0 SNR = %.1f dB, want >= %.1f dB", ratio, minSNR)
	}
}

func TestProfile1SNRDecreasesWithLevel(t *testing.T) {
	pcm := bandLimitedNoise(1024, 1, 999)

	const epsilon = 0.5 // dB slack for rounding at the quantization boundary
	prev := roundTripSNR(t, pcm, 0)
	for level := uint8(1); level <= 3; level++ {
		ratio := roundTripSNR(t, pcm, level)
		if ratio > prev+epsilon {
			t.Errorf("level %d SNR = %.1f dB, want <= level %d SNR (%.1f dB, ±%.1f); higher levels must not encode more faithfully",
				level, ratio, level-1, prev, epsilon)
		}
		prev = ratio
	}
}
