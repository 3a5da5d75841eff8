package fourier

import (
	"math"

	"github.com/ausocean/frad/bits"
	"gonum.org/v1/gonum/floats"
)

// spreadAlpha is the exponent applied to subband RMS when deriving a
// masking threshold.
const spreadAlpha = 0.8

// quantAlpha is the exponent of the non-linear quantiser.
const quantAlpha = 0.75

// modifiedOpusSubbands are the 28 boundary frequencies (Hz) of the 27-band
// modified-Opus partition used for masking.
var modifiedOpusSubbands = [28]float64{
	0, 200, 400, 600, 800, 1000, 1200, 1400,
	1600, 2000, 2400, 2800, 3200, 4000, 4800, 5600,
	6800, 8000, 9600, 12000, 15600, 20000, 24000, 28800,
	34400, 40800, 48000, math.MaxFloat64,
}

// mosLen is the number of modified-Opus subbands.
var mosLen = len(modifiedOpusSubbands) - 1

// binRange returns the [start, end) bin range of subband i within a DCT
// array of the given length at the given sample rate.
func binRange(length int, srate uint32, i int) (int, int) {
	nyq := float64(srate) / 2
	start := int(math.Round(modifiedOpusSubbands[i] / nyq * float64(length)))
	end := int(math.Round(modifiedOpusSubbands[i+1] / nyq * float64(length)))
	if start > length {
		start = length
	}
	if end > length {
		end = length
	}
	return start, end
}

// mappingToOpus reduces a DCT coefficient array to one RMS value per
// modified-Opus subband.
func mappingToOpus(freqs []float64, srate uint32) []float64 {
	mapped := make([]float64, mosLen)
	for i := 0; i < mosLen; i++ {
		start, end := binRange(len(freqs), srate, i)
		if end <= start {
			continue
		}
		sub := freqs[start:end]
		sumSq := floats.Dot(sub, sub)
		mapped[i] = math.Sqrt(sumSq / float64(len(sub)))
	}
	return mapped
}

// maskThresMos derives the masking threshold for each subband from its RMS,
// clamped above the absolute threshold of hearing.
func maskThresMos(mappedFreqs []float64, alpha float64) []float64 {
	thres := make([]float64, mosLen)
	for i := 0; i < mosLen; i++ {
		f := (modifiedOpusSubbands[i] + modifiedOpusSubbands[i+1]) / 2
		k := f / 1000
		abs := math.Min(3.64*math.Pow(k, -0.8)-6.5*math.Exp(-0.6*math.Pow(k-3.3, 2))+1e-3*math.Pow(k, 4), 96)
		thres[i] = math.Max(math.Pow(mappedFreqs[i], alpha), math.Pow(10, (abs-96)/20))
	}
	return thres
}

// mappingFromOpus linearly interpolates per-subband values back up to a
// DCT array of length freqsLen.
func mappingFromOpus(mappedFreqs []float64, freqsLen int, srate uint32) []float64 {
	freqs := make([]float64, freqsLen)
	for i := 0; i < mosLen-1; i++ {
		start, end := binRange(freqsLen, srate, i)
		if end <= start {
			continue
		}
		span := bits.Linspace(mappedFreqs[i], mappedFreqs[i+1], end-start)
		copy(freqs[start:end], span)
	}
	return freqs
}

// quant is Profile 1's non-linear quantisation function.
func quant(x float64) float64 {
	return math.Copysign(math.Pow(math.Abs(x), quantAlpha), x)
}

// dequant inverts quant.
func dequant(y float64) float64 {
	return math.Copysign(math.Pow(math.Abs(y), 1/quantAlpha), y)
}

// expGolombEncode encodes a sequence of signed integers with Exponential
// Golomb-Rice coding: a one-byte order k (0 if the sequence is empty or all
// zero) followed by a unary-prefixed binary codeword per value.
func expGolombEncode(data []int64) []byte {
	if len(data) == 0 {
		return []byte{0}
	}
	var dmax int64
	for _, v := range data {
		if a := absInt64(v); a > dmax {
			dmax = a
		}
	}
	var k uint
	if dmax > 0 {
		k = uint(math.Ceil(math.Log2(float64(dmax))))
	}

	encoded := bits.ToBits([]byte{byte(k)})
	for _, n := range data {
		var x int64
		if n > 0 {
			x = (n << 1) - 1
		} else {
			x = -n << 1
		}
		x += 1 << k

		codeword := trimLeadingZeroBits(int64ToBits(x))
		prefixLen := len(codeword) - int(k+1)
		if prefixLen > 0 {
			encoded = append(encoded, make([]bool, prefixLen)...)
		}
		encoded = append(encoded, codeword...)
	}
	return bits.ToBytes(encoded)
}

// expGolombDecode inverts expGolombEncode.
func expGolombDecode(data []byte) []int64 {
	if len(data) == 0 {
		return nil
	}
	k := uint(data[0])
	kx := int64(1) << k

	bitstream := bits.ToBits(data[1:])
	var out []int64
	idx := 0
	for idx < len(bitstream) {
		m := 0
		for idx+m < len(bitstream) && !bitstream[idx+m] {
			m++
		}
		if idx+m >= len(bitstream) {
			break
		}
		cwlen := m*2 + int(k) + 1
		end := idx + cwlen
		if end > len(bitstream) {
			end = len(bitstream)
		}
		codeword := bitstream[idx+m : end]

		var n int64
		for _, b := range codeword {
			n <<= 1
			if b {
				n |= 1
			}
		}
		n -= kx
		if n&1 == 1 {
			out = append(out, (n+1)>>1)
		} else {
			out = append(out, -(n >> 1))
		}

		idx += cwlen
	}
	return out
}

func absInt64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

// int64ToBits returns the 64-bit two's complement representation of x, MSB
// first.
func int64ToBits(x int64) []bool {
	out := make([]bool, 64)
	u := uint64(x)
	for i := 0; i < 64; i++ {
		out[i] = (u>>(63-i))&1 != 0
	}
	return out
}

func trimLeadingZeroBits(b []bool) []bool {
	for i, v := range b {
		if v {
			return b[i:]
		}
	}
	return b[len(b)-1:]
}
