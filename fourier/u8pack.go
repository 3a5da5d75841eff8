package fourier

import (
	"encoding/binary"
	"math"

	"github.com/ausocean/frad/bits"
)

// packFloats packs a flat f64 array into a byte array at the given bit
// depth (one of 12, 16, 24, 32, 48, 64) and endianness. Depths 12, 24 and
// 48 are packed at the next-larger IEEE width (16, 32, 64) and then have
// their low mantissa bits dropped; those depths are always written
// big-endian on the wire regardless of the be argument.
func packFloats(input []float64, depth int, be bool) []byte {
	if depth%3 == 0 {
		be = true
	}

	var out []byte
	switch depth {
	case 12, 16:
		for _, x := range input {
			u := float64ToHalfBits(x)
			var b [2]byte
			if be {
				binary.BigEndian.PutUint16(b[:], u)
			} else {
				binary.LittleEndian.PutUint16(b[:], u)
			}
			out = append(out, b[:]...)
		}
	case 24, 32:
		for _, x := range input {
			u := math.Float32bits(float32(x))
			var b [4]byte
			if be {
				binary.BigEndian.PutUint32(b[:], u)
			} else {
				binary.LittleEndian.PutUint32(b[:], u)
			}
			out = append(out, b[:]...)
		}
	case 48, 64:
		for _, x := range input {
			u := math.Float64bits(x)
			var b [8]byte
			if be {
				binary.BigEndian.PutUint64(b[:], u)
			} else {
				binary.LittleEndian.PutUint64(b[:], u)
			}
			out = append(out, b[:]...)
		}
	}

	if depth%3 == 0 {
		out = bits.ToBytes(cutFloat3s(bits.ToBits(out), depth))
	}
	return out
}

// unpackFloats reverses packFloats.
func unpackFloats(input []byte, depth int, be bool) []float64 {
	if depth%3 == 0 {
		be = true
	}

	if depth%3 == 0 {
		bitstream := bits.ToBits(input)
		bitstream = bitstream[:len(bitstream)-len(bitstream)%depth]
		input = bits.ToBytes(padFloat3s(bitstream, depth))
	}

	var out []float64
	switch depth {
	case 12, 16:
		for i := 0; i+2 <= len(input); i += 2 {
			var u uint16
			if be {
				u = binary.BigEndian.Uint16(input[i : i+2])
			} else {
				u = binary.LittleEndian.Uint16(input[i : i+2])
			}
			out = append(out, halfBitsToFloat64(u))
		}
	case 24, 32:
		for i := 0; i+4 <= len(input); i += 4 {
			var u uint32
			if be {
				u = binary.BigEndian.Uint32(input[i : i+4])
			} else {
				u = binary.LittleEndian.Uint32(input[i : i+4])
			}
			out = append(out, float64(math.Float32frombits(u)))
		}
	case 48, 64:
		for i := 0; i+8 <= len(input); i += 8 {
			var u uint64
			if be {
				u = binary.BigEndian.Uint64(input[i : i+8])
			} else {
				u = binary.LittleEndian.Uint64(input[i : i+8])
			}
			out = append(out, math.Float64frombits(u))
		}
	}
	return out
}

// cutFloat3s drops the trailing bits/3 low mantissa bits from every
// bits*4/3-bit group, leaving only the leading `bits` bits of each.
func cutFloat3s(bstr []bool, depth int) []bool {
	group := depth * 4 / 3
	var out []bool
	for i := 0; i < len(bstr); i += group {
		end := i + depth
		if end > len(bstr) {
			end = len(bstr)
		}
		if i > len(bstr) {
			break
		}
		out = append(out, bstr[i:end]...)
	}
	return out
}

// padFloat3s appends bits/3 zero bits to every bits-bit group, restoring
// the next-larger IEEE width so it can be decoded directly.
func padFloat3s(bstr []bool, depth int) []bool {
	pad := depth / 3
	var out []bool
	for i := 0; i < len(bstr); i += depth {
		end := i + depth
		if end > len(bstr) {
			end = len(bstr)
		}
		out = append(out, bstr[i:end]...)
		out = append(out, make([]bool, pad)...)
	}
	return out
}

// float64ToHalfBits converts x to the bit pattern of an IEEE-754 binary16
// (half precision) value.
func float64ToHalfBits(x float64) uint16 {
	f32 := float32(x)
	bits32 := math.Float32bits(f32)

	sign := uint16((bits32 >> 16) & 0x8000)
	exp := int32((bits32>>23)&0xFF) - 127 + 15
	mant := bits32 & 0x7FFFFF

	switch {
	case exp <= 0:
		// Underflows to zero (subnormal half handling is not needed for
		// this codec's dynamic range).
		return sign
	case exp >= 0x1F:
		// Overflow to infinity.
		return sign | 0x7C00
	default:
		return sign | uint16(exp)<<10 | uint16(mant>>13)
	}
}

// halfBitsToFloat64 converts an IEEE-754 binary16 bit pattern back to
// float64.
func halfBitsToFloat64(u uint16) float64 {
	sign := uint32(u&0x8000) << 16
	exp := (u >> 10) & 0x1F
	mant := uint32(u & 0x3FF)

	var bits32 uint32
	switch {
	case exp == 0:
		if mant == 0 {
			bits32 = sign
		} else {
			// Subnormal half: normalise into a single-precision float.
			e := -1
			m := mant
			for m&0x400 == 0 {
				m <<= 1
				e--
			}
			m &= 0x3FF
			bits32 = sign | uint32(127+e)<<23 | m<<13
		}
	case exp == 0x1F:
		bits32 = sign | 0xFF<<23 | mant<<13
	default:
		bits32 = sign | uint32(int32(exp)-15+127)<<23 | mant<<13
	}
	return float64(math.Float32frombits(bits32))
}
