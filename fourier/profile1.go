package fourier

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Depths1 is Profile 1's bit depth table, indexed by bit_depth_index.
var Depths1 = [7]int{8, 12, 16, 24, 32, 48, 64}

// smplsLI is the allowed sample-count table: the 3 base stride multipliers
// {128,144,192}, each at 8 dyadic scales (x1 to x128).
var smplsLI = [24]int{
	128, 144, 192,
	256, 288, 384,
	512, 576, 768,
	1024, 1152, 1536,
	2048, 2304, 3072,
	4096, 4608, 6144,
	8192, 9216, 12288,
	16384, 18432, 24576,
}

// SmplsLITable returns the allowed Profile 1 sample-count table.
func SmplsLITable() []int { return smplsLI[:] }

// padPCM pads pcm along the time axis up to the next value in smplsLI, or
// leaves it unpadded if it already exceeds the table's largest entry.
func padPCM(pcm [][]float64) [][]float64 {
	n := len(pcm)
	channels := len(pcm[0])
	target := n
	for _, s := range smplsLI {
		if s >= n {
			target = s
			break
		}
	}
	if target == n {
		return pcm
	}
	out := make([][]float64, target)
	copy(out, pcm)
	for i := n; i < target; i++ {
		out[i] = make([]float64, channels)
	}
	return out
}

// AnalogueProfile1 runs Profile 1's lossy perceptual analogue stage: pad to
// an allowed sample count, DCT, modified-Opus subband masking, non-linear
// quantisation, Exp-Golomb-Rice entropy coding and DEFLATE compression.
func AnalogueProfile1(pcm [][]float64, depth int, srate uint32, level uint8) ([]byte, int) {
	padded := padPCM(pcm)
	samples := len(padded)
	channels := len(padded[0])
	scale := math.Pow(2, float64(depth-1)) / float64(samples)

	freqs := make([][]float64, channels)
	for c := 0; c < channels; c++ {
		col := make([]float64, samples)
		for n := 0; n < samples; n++ {
			col[n] = padded[n][c] * scale
		}
		freqs[c] = DCT(col)
	}

	constFactor := math.Pow(1.25, float64(level))/19 + 0.5
	fixedPointScale := math.Pow(2, float64(16-depth))

	thresInt := make([][]int64, channels)
	coefInt := make([][]int64, channels)
	for c := 0; c < channels; c++ {
		rms := mappingToOpus(freqs[c], srate)
		thres := maskThresMos(rms, spreadAlpha)

		ti := make([]int64, mosLen)
		for i, t := range thres {
			ti[i] = int64(math.Round(t * constFactor * fixedPointScale))
		}
		thresInt[c] = ti

		thresFull := mappingFromOpus(thres, len(freqs[c]), srate)
		for i := range thresFull {
			thresFull[i] *= constFactor
		}

		ci := make([]int64, len(freqs[c]))
		for i, f := range freqs[c] {
			divided := f
			if thresFull[i] != 0 {
				divided = f / thresFull[i]
			}
			ci[i] = int64(math.Round(quant(divided)))
		}
		coefInt[c] = ci
	}

	thresFlat := interleave(thresInt)
	coefFlat := interleave(coefInt)

	thresGlm := expGolombEncode(thresFlat)
	coefGlm := expGolombEncode(coefFlat)

	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(thresGlm)))

	var raw bytes.Buffer
	raw.Write(lenPrefix[:])
	raw.Write(thresGlm)
	raw.Write(coefGlm)

	return deflate(raw.Bytes()), indexOfDepth(Depths1[:], depth)
}

// DigitalProfile1 inverts AnalogueProfile1.
func DigitalProfile1(payload []byte, depthIndex, channels int, srate uint32) ([][]float64, error) {
	raw, err := inflate(payload)
	if err != nil {
		return nil, errors.Wrap(err, "fourier: profile 1 inflate failed")
	}
	if len(raw) < 4 {
		return nil, errors.New("fourier: profile 1 payload too short")
	}
	thresLen := int(binary.BigEndian.Uint32(raw[:4]))
	if 4+thresLen > len(raw) {
		return nil, errors.New("fourier: profile 1 threshold segment length out of range")
	}
	thresGlm := raw[4 : 4+thresLen]
	coefGlm := raw[4+thresLen:]

	thresFlat := expGolombDecode(thresGlm)
	coefFlat := expGolombDecode(coefGlm)

	thresInt := deinterleave(thresFlat, channels)
	coefInt := deinterleave(coefFlat, channels)

	depth := Depths1[depthIndex]
	fixedPointScale := math.Pow(2, float64(16-depth))

	samples := 0
	if channels > 0 && len(coefInt) > 0 {
		samples = len(coefInt[0])
	}

	pcmTrans := make([][]float64, channels)
	for c := 0; c < channels; c++ {
		thres := make([]float64, mosLen)
		for i, ti := range thresInt[c] {
			thres[i] = float64(ti) / fixedPointScale
		}
		thresFull := mappingFromOpus(thres, samples, srate)

		freqs := make([]float64, samples)
		for i, ci := range coefInt[c] {
			freqs[i] = dequant(float64(ci)) * thresFull[i]
		}
		pcmTrans[c] = IDCT(freqs)
	}

	scale := float64(samples) / math.Pow(2, float64(depth-1))
	pcm := make([][]float64, samples)
	for n := 0; n < samples; n++ {
		row := make([]float64, channels)
		for c := 0; c < channels; c++ {
			row[c] = pcmTrans[c][n] * scale
		}
		pcm[n] = row
	}
	return pcm, nil
}

// interleave flattens a per-channel [][]int64 into a single slice ordered
// by coefficient index first, channel second (matching how the reference
// decoder reassembles channels from a flat stream).
func interleave(perChannel [][]int64) []int64 {
	if len(perChannel) == 0 {
		return nil
	}
	n := len(perChannel[0])
	out := make([]int64, 0, n*len(perChannel))
	for i := 0; i < n; i++ {
		for _, ch := range perChannel {
			out = append(out, ch[i])
		}
	}
	return out
}

// deinterleave is the inverse of interleave.
func deinterleave(flat []int64, channels int) [][]int64 {
	if channels == 0 {
		return nil
	}
	n := len(flat) / channels
	out := make([][]int64, channels)
	for c := range out {
		out[c] = make([]int64, n)
	}
	for i := 0; i < n; i++ {
		for c := 0; c < channels; c++ {
			out[c][i] = flat[i*channels+c]
		}
	}
	return out
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	w, _ := flate.NewWriter(&buf, flate.BestCompression)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

func inflate(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	return io.ReadAll(r)
}
