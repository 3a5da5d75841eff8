package fourier

import (
	"math"

	"github.com/pkg/errors"
)

// Depths0 is Profile 0's bit depth table, indexed by bit_depth_index.
var Depths0 = [6]int{12, 16, 24, 32, 48, 64}

// floatDR bounds the dynamic range of packed coefficients at each depth
// index, used to auto-escalate depth on overflow.
var floatDR = [6]int{5, 5, 8, 8, 11, 11}

// ErrDepthOverflow is returned by AnalogueProfile0 when no depth in the
// table can represent the transformed coefficients without overflow.
var ErrDepthOverflow = errors.New("fourier: profile 0 depth escalation exhausted the depth table")

// AnalogueProfile0 runs Profile 0's lossless analogue stage: per-channel
// DCT-II, depth auto-escalation, and float packing.
func AnalogueProfile0(pcm [][]float64, depth int, littleEndian bool) ([]byte, int, int, error) {
	channels := len(pcm[0])
	samples := len(pcm)

	freqs := make([][]float64, channels)
	for c := 0; c < channels; c++ {
		col := make([]float64, samples)
		for n := 0; n < samples; n++ {
			col[n] = pcm[n][c]
		}
		freqs[c] = DCT(col)
	}

	flat := make([]float64, 0, samples*channels)
	for n := 0; n < samples; n++ {
		for c := 0; c < channels; c++ {
			flat = append(flat, freqs[c][n])
		}
	}

	bx := indexOfDepth(Depths0[:], depth)
	for overflowsDepth(flat, floatDR[bx]) {
		if bx == len(Depths0)-1 {
			return nil, 0, 0, ErrDepthOverflow
		}
		bx++
	}

	payload := packFloats(flat, Depths0[bx], !littleEndian)
	return payload, bx, channels, nil
}

// DigitalProfile0 inverts AnalogueProfile0.
func DigitalProfile0(payload []byte, depthIndex, channels int, littleEndian bool) [][]float64 {
	flat := unpackFloats(payload, Depths0[depthIndex], !littleEndian)
	samples := len(flat) / channels

	freqs := make([][]float64, channels)
	for c := 0; c < channels; c++ {
		freqs[c] = make([]float64, samples)
	}
	for n := 0; n < samples; n++ {
		for c := 0; c < channels; c++ {
			freqs[c][n] = flat[n*channels+c]
		}
	}

	pcmTrans := make([][]float64, channels)
	for c := 0; c < channels; c++ {
		pcmTrans[c] = IDCT(freqs[c])
	}

	pcm := make([][]float64, samples)
	for n := 0; n < samples; n++ {
		row := make([]float64, channels)
		for c := 0; c < channels; c++ {
			row[c] = pcmTrans[c][n]
		}
		pcm[n] = row
	}
	return pcm
}

func indexOfDepth(table []int, depth int) int {
	for i, d := range table {
		if d == depth {
			return i
		}
	}
	return 0
}

func overflowsDepth(flat []float64, dr int) bool {
	var max float64
	for _, v := range flat {
		if a := math.Abs(v); a > max {
			max = a
		}
	}
	return max > math.Pow(2, math.Pow(2, float64(dr-1)))
}
