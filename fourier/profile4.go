package fourier

import "github.com/ausocean/frad/codec/pcm"

// Depths4 is Profile 4's bit depth table, indexed by bit_depth_index.
var Depths4 = [5]int{8, 16, 24, 32, 64}

// FormatForDepth4 maps a Profile 4 depth index and endianness flag to the
// pcm.SampleFormat it corresponds to: integer formats for 8 to 32 bits, and
// float64 (F64LE/F64BE) for 64 bits.
func FormatForDepth4(depthIndex int, littleEndian bool) pcm.SampleFormat {
	depth := Depths4[depthIndex]
	switch depth {
	case 8:
		return pcm.U8
	case 16:
		if littleEndian {
			return pcm.S16LE
		}
		return pcm.S16BE
	case 24:
		if littleEndian {
			return pcm.S24LE
		}
		return pcm.S24BE
	case 32:
		if littleEndian {
			return pcm.S32LE
		}
		return pcm.S32BE
	default: // 64
		if littleEndian {
			return pcm.F64LE
		}
		return pcm.F64BE
	}
}

// AnalogueProfile4 packs PCM directly to bytes at the given format with no
// transform at all.
func AnalogueProfile4(samples [][]float64, format pcm.SampleFormat) []byte {
	return pcm.Pack(samples, format)
}

// DigitalProfile4 inverts AnalogueProfile4.
func DigitalProfile4(payload []byte, channels int, format pcm.SampleFormat) [][]float64 {
	return pcm.Unpack(payload, channels, format)
}
