// Package pcm provides the PCM sample format conversions that sit at the
// codec's boundary: Profile 4's raw passthrough packs and unpacks directly
// through it, and external callers use the same converter to turn decoded
// [-1,1] float64 samples into whichever on-wire format they asked for.
package pcm

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// SampleFormat is the on-wire representation of a single PCM sample.
type SampleFormat int

const (
	Unknown SampleFormat = iota - 1
	U8
	S16LE
	S16BE
	S24LE
	S24BE
	S32LE
	S32BE
	F32LE
	F32BE
	F64LE
	F64BE
)

// BitDepth returns the number of bits a single sample occupies on the wire.
func (f SampleFormat) BitDepth() int {
	switch f {
	case U8:
		return 8
	case S16LE, S16BE:
		return 16
	case S24LE, S24BE:
		return 24
	case S32LE, S32BE:
		return 32
	case F32LE, F32BE:
		return 32
	case F64LE, F64BE:
		return 64
	default:
		return 0
	}
}

func (f SampleFormat) bytesPerSample() int {
	return f.BitDepth() / 8
}

// String returns the string representation of a SampleFormat.
func (f SampleFormat) String() string {
	switch f {
	case U8:
		return "U8"
	case S16LE:
		return "S16_LE"
	case S16BE:
		return "S16_BE"
	case S24LE:
		return "S24_LE"
	case S24BE:
		return "S24_BE"
	case S32LE:
		return "S32_LE"
	case S32BE:
		return "S32_BE"
	case F32LE:
		return "F32_LE"
	case F32BE:
		return "F32_BE"
	case F64LE:
		return "F64_LE"
	case F64BE:
		return "F64_BE"
	default:
		return "Unknown"
	}
}

// SFFromString takes a string representing a sample format and returns the
// corresponding SampleFormat.
func SFFromString(s string) (SampleFormat, error) {
	switch s {
	case "U8":
		return U8, nil
	case "S16_LE":
		return S16LE, nil
	case "S16_BE":
		return S16BE, nil
	case "S24_LE":
		return S24LE, nil
	case "S24_BE":
		return S24BE, nil
	case "S32_LE":
		return S32LE, nil
	case "S32_BE":
		return S32BE, nil
	case "F32_LE":
		return F32LE, nil
	case "F32_BE":
		return F32BE, nil
	case "F64_LE":
		return F64LE, nil
	case "F64_BE":
		return F64BE, nil
	default:
		return Unknown, errors.Errorf("unknown sample format (%s)", s)
	}
}

// DataSize takes audio attributes describing PCM audio data and returns the
// size of that data in bytes.
func DataSize(rate, channels, bitDepth uint, period float64) int {
	return int(float64(channels) * float64(rate) * float64(bitDepth/8) * period)
}

// Pack encodes row-major [samples][channels] float64 PCM, nominally in
// [-1,1], into a flat byte buffer in the given format.
func Pack(samples [][]float64, format SampleFormat) []byte {
	if len(samples) == 0 {
		return nil
	}
	channels := len(samples[0])
	out := make([]byte, 0, len(samples)*channels*format.bytesPerSample())
	for _, row := range samples {
		for c := 0; c < channels; c++ {
			out = append(out, encodeSample(row[c], format)...)
		}
	}
	return out
}

// Unpack is the inverse of Pack: it splits a flat byte buffer of the given
// format into row-major [samples][channels] float64 PCM.
func Unpack(data []byte, channels int, format SampleFormat) [][]float64 {
	width := format.bytesPerSample()
	if width == 0 || channels == 0 {
		return nil
	}
	frame := width * channels
	samples := len(data) / frame
	out := make([][]float64, samples)
	for i := 0; i < samples; i++ {
		row := make([]float64, channels)
		base := i * frame
		for c := 0; c < channels; c++ {
			row[c] = decodeSample(data[base+c*width:base+(c+1)*width], format)
		}
		out[i] = row
	}
	return out
}

func encodeSample(x float64, format SampleFormat) []byte {
	switch format {
	case U8:
		v := clamp(x)*127.5 + 128
		return []byte{byte(int32(v))}
	case S16LE, S16BE:
		v := int16(clamp(x) * 32767)
		b := make([]byte, 2)
		if format == S16BE {
			binary.BigEndian.PutUint16(b, uint16(v))
		} else {
			binary.LittleEndian.PutUint16(b, uint16(v))
		}
		return b
	case S24LE, S24BE:
		v := int32(clamp(x) * 8388607)
		b := make([]byte, 3)
		if format == S24BE {
			b[0] = byte(v >> 16)
			b[1] = byte(v >> 8)
			b[2] = byte(v)
		} else {
			b[0] = byte(v)
			b[1] = byte(v >> 8)
			b[2] = byte(v >> 16)
		}
		return b
	case S32LE, S32BE:
		v := int32(clamp(x) * 2147483647)
		b := make([]byte, 4)
		if format == S32BE {
			binary.BigEndian.PutUint32(b, uint32(v))
		} else {
			binary.LittleEndian.PutUint32(b, uint32(v))
		}
		return b
	case F32LE, F32BE:
		b := make([]byte, 4)
		u := math.Float32bits(float32(x))
		if format == F32BE {
			binary.BigEndian.PutUint32(b, u)
		} else {
			binary.LittleEndian.PutUint32(b, u)
		}
		return b
	case F64LE, F64BE:
		b := make([]byte, 8)
		u := math.Float64bits(x)
		if format == F64BE {
			binary.BigEndian.PutUint64(b, u)
		} else {
			binary.LittleEndian.PutUint64(b, u)
		}
		return b
	default:
		return nil
	}
}

func decodeSample(b []byte, format SampleFormat) float64 {
	switch format {
	case U8:
		return (float64(b[0]) - 128) / 127.5
	case S16LE, S16BE:
		var u uint16
		if format == S16BE {
			u = binary.BigEndian.Uint16(b)
		} else {
			u = binary.LittleEndian.Uint16(b)
		}
		return float64(int16(u)) / 32767
	case S24LE, S24BE:
		var v int32
		if format == S24BE {
			v = int32(b[0])<<16 | int32(b[1])<<8 | int32(b[2])
		} else {
			v = int32(b[2])<<16 | int32(b[1])<<8 | int32(b[0])
		}
		// Sign-extend the 24-bit value.
		v = (v << 8) >> 8
		return float64(v) / 8388607
	case S32LE, S32BE:
		var u uint32
		if format == S32BE {
			u = binary.BigEndian.Uint32(b)
		} else {
			u = binary.LittleEndian.Uint32(b)
		}
		return float64(int32(u)) / 2147483647
	case F32LE, F32BE:
		var u uint32
		if format == F32BE {
			u = binary.BigEndian.Uint32(b)
		} else {
			u = binary.LittleEndian.Uint32(b)
		}
		return float64(math.Float32frombits(u))
	case F64LE, F64BE:
		var u uint64
		if format == F64BE {
			u = binary.BigEndian.Uint64(b)
		} else {
			u = binary.LittleEndian.Uint64(b)
		}
		return math.Float64frombits(u)
	default:
		return 0
	}
}

func clamp(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
