package crc

import "testing"

// TestVectors checks the two published ASCII-digit vectors spec.md §8 names.
func TestVectors(t *testing.T) {
	data := []byte("123456789")

	if got, want := CRC32(data), uint32(0xCBF43926); got != want {
		t.Errorf("CRC32(%q) = %#x, want %#x", data, got, want)
	}
	if got, want := CRC16ANSI(data), uint16(0xBB3D); got != want {
		t.Errorf("CRC16ANSI(%q) = %#x, want %#x", data, got, want)
	}
}

func TestEmpty(t *testing.T) {
	if got, want := CRC32(nil), uint32(0); got != want {
		t.Errorf("CRC32(nil) = %#x, want %#x", got, want)
	}
	if got, want := CRC16ANSI(nil), uint16(0); got != want {
		t.Errorf("CRC16ANSI(nil) = %#x, want %#x", got, want)
	}
}

func TestSingleBitFlipDetected(t *testing.T) {
	a := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	b := append([]byte(nil), a...)
	b[2] ^= 0x01

	if CRC32(a) == CRC32(b) {
		t.Error("CRC32 failed to detect single bit flip")
	}
	if CRC16ANSI(a) == CRC16ANSI(b) {
		t.Error("CRC16ANSI failed to detect single bit flip")
	}
}
