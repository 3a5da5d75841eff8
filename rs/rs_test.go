package rs

import (
	"bytes"
	"testing"

	"pgregory.net/rapid"
)

func TestEncodeDecodeNoErrors(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	const nsym = 8

	encoded := Encode(data, nsym)
	if len(encoded) != len(data)+nsym {
		t.Fatalf("len(encoded) = %d, want %d", len(encoded), len(data)+nsym)
	}

	got, err := decodeBlock(append([]byte(nil), encoded...), len(data), nsym)
	if err != nil {
		t.Fatalf("decodeBlock returned error on a clean block: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("decodeBlock() = %v, want %v", got, data)
	}
}

func TestDecodeCorrectsErrors(t *testing.T) {
	data := []byte("reed solomon forward error correction over gf256")
	const nsym = 10 // corrects up to 5 byte errors

	encoded := Encode(data, nsym)
	corrupted := append([]byte(nil), encoded...)
	// Flip 5 bytes, at positions spread across the block.
	for _, pos := range []int{0, 7, 15, 22, 30} {
		corrupted[pos] ^= 0xFF
	}

	got, err := decodeBlock(corrupted, len(data), nsym)
	if err != nil {
		t.Fatalf("decodeBlock failed to correct 5 errors with nsym=10: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("decodeBlock() = %q, want %q", got, data)
	}
}

func TestDecodeTooManyErrorsUncorrectable(t *testing.T) {
	data := []byte("forward error correction")
	const nsym = 6 // corrects up to 3 byte errors

	encoded := Encode(data, nsym)
	corrupted := append([]byte(nil), encoded...)
	for _, pos := range []int{0, 3, 6, 9, 12} {
		corrupted[pos] ^= 0xFF
	}

	if _, err := decodeBlock(corrupted, len(data), nsym); err == nil {
		t.Fatal("decodeBlock() succeeded on a block with more errors than nsym/2")
	}
}

// TestRoundTripRecoversExactErrors checks spec.md's invariant that flipping
// up to t = nsym/2 bytes in an encoded block and decoding recovers the
// original data exactly.
func TestRoundTripRecoversExactErrors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 1, 64).Draw(t, "data")
		nsym := rapid.IntRange(2, 20).Filter(func(n int) bool { return n%2 == 0 }).Draw(t, "nsym")
		tErrs := nsym / 2

		encoded := Encode(data, nsym)
		corrupted := append([]byte(nil), encoded...)

		used := map[int]bool{}
		for len(used) < tErrs {
			pos := rapid.IntRange(0, len(encoded)-1).Draw(t, "pos")
			if used[pos] {
				continue
			}
			used[pos] = true
			flip := rapid.IntRange(1, 255).Draw(t, "flip")
			corrupted[pos] ^= byte(flip)
		}

		got, err := decodeBlock(corrupted, len(data), nsym)
		if err != nil {
			t.Fatalf("decodeBlock failed with exactly t=%d errors (nsym=%d): %v", tErrs, nsym, err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("decodeBlock() = %v, want %v", got, data)
		}
	})
}

func TestEncodeChunkedDecodeChunkedRoundTrip(t *testing.T) {
	data := []byte("a somewhat longer message that spans multiple reed solomon chunks of data")
	const dlen = 16
	const nsym = 8

	encoded := EncodeChunked(data, dlen, nsym)
	decoded := DecodeChunked(encoded, dlen, nsym)

	// The message length here is not a multiple of dlen, so the final block
	// is shorter than the others and must round-trip as well.
	if !bytes.Equal(decoded, data) {
		t.Fatalf("DecodeChunked() = %q, want %q", decoded, data)
	}
}

func TestUneccStripsParity(t *testing.T) {
	data := []byte("twenty four byte message")
	const dlen = 24
	const nsym = 4

	encoded := Encode(data, nsym)
	stripped := Unecc(encoded, dlen, nsym)
	if !bytes.Equal(stripped, data) {
		t.Fatalf("Unecc() = %q, want %q", stripped, data)
	}
}
