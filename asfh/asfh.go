// Package asfh implements the Audio Stream Frame Header codec: the
// variable-length header that follows the container's four-byte
// synchronisation word, parsed incrementally as bytes arrive.
package asfh

import (
	"encoding/binary"

	"github.com/ausocean/frad/bits"
	"github.com/pkg/errors"
)

// FrameSignature is the four-byte synchronisation word that begins every
// frame.
var FrameSignature = [4]byte{0xff, 0xd0, 0xd2, 0x97}

// Profile tags.
const (
	Profile0 = 0 // lossless, spectral
	Profile1 = 1 // lossy, perceptual (compact)
	Profile4 = 4 // lossless, raw
)

// MaxPayloadBytes bounds payload_bytes at a sanity limit; headers claiming
// more are rejected as invalid rather than risking an unbounded allocation.
const MaxPayloadBytes = 32 << 20

// Srates is the fixed sample rate table compact (Profile 1) headers index
// into rather than carrying a raw 32-bit rate.
var Srates = [12]uint32{96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050, 16000, 12000, 11025, 8000}

// ErrInvalidHeader is returned by ReadBuf when a header carries a reserved
// field, an unknown profile, or an implausible size.
var ErrInvalidHeader = errors.New("asfh: invalid header")

// IsLossless reports whether profile uses CRC-32 and bit-exact transforms.
func IsLossless(profile uint8) bool { return profile == Profile0 || profile == Profile4 }

// IsCompact reports whether profile uses sample-count tables and CRC-16.
func IsCompact(profile uint8) bool { return profile == Profile1 }

// Status is the three-way result of ReadBuf.
type Status int

const (
	// StatusIncomplete means more bytes are needed; the caller must retain
	// the header prefix and call ReadBuf again once more data arrives.
	StatusIncomplete Status = iota
	// StatusComplete means the header was fully read; the next
	// PayloadBytes bytes are the frame's payload.
	StatusComplete
	// StatusForceFlush means the header signalled a container boundary;
	// any retained overlap must be flushed before continuing.
	StatusForceFlush
)

// ASFH holds one frame header's parsed fields, plus the raw bytes
// accumulated so far while parsing is incomplete.
type ASFH struct {
	Profile          uint8
	SampleRate       uint32
	Channels         uint8
	BitDepthIndex    uint8
	FrameLength      uint32 // samples
	PayloadBytes     uint32
	LittleEndian     bool
	EccEnabled       bool
	EccRatio         [2]uint16 // data, parity bytes per block
	CRC32            uint32
	CRC16            uint16
	OverlapNumerator uint8
	TotalBytes       uint32 // header + payload
	ForceFlush       bool   // header carried the force-flush flag
	AllSet           bool

	buf []byte
}

// New returns an empty ASFH.
func New() *ASFH {
	return &ASFH{}
}

// Clear resets a to the empty header, preserving nothing from the previous
// frame.
func (a *ASFH) Clear() {
	*a = ASFH{}
}

// CritEq is the critical-parameter predicate: it returns true iff profile,
// sample rate, channels and bit depth all match, gating PCM reconfiguration
// events upstream.
func (a *ASFH) CritEq(other *ASFH) bool {
	return a.Profile == other.Profile &&
		a.SampleRate == other.SampleRate &&
		a.Channels == other.Channels &&
		a.BitDepthIndex == other.BitDepthIndex
}

// Empty reports whether a has never been populated (used to distinguish a
// fresh decoder from one mid-stream).
func (a *ASFH) Empty() bool {
	return a.SampleRate == 0 && a.Channels == 0
}

// SeedSync seeds a's internal buffer with the four sync bytes already
// matched by the caller.
func (a *ASFH) SeedSync() {
	a.buf = append([]byte(nil), FrameSignature[:]...)
}

// Started reports whether a has already consumed its sync word and is
// mid-parse, so a caller knows whether it still needs to search the main
// buffer for the next sync word before calling ReadBuf again.
func (a *ASFH) Started() bool {
	return len(a.buf) > 0
}

// flagsByte layout (buf[4]):
//
//	bit 7: force flush
//	bit 6: ecc enabled
//	bit 5: little endian
//	bits 4-2: profile
//	bits 1-0: reserved
const (
	flagForceFlush = 1 << 7
	flagEcc        = 1 << 6
	flagLittle     = 1 << 5
	profileShift   = 2
	profileMask    = 0x7
)

// headerLen returns the total header length (including the 4-byte sync)
// once the flags byte is known.
func headerLen(profile uint8, ecc bool) int {
	n := 4 /* sync */ + 1 /* flags */ + 1 /* depth idx */ + 1 /* channels */ + 1 /* olap */
	if IsCompact(profile) {
		n += 1 // sample rate table index
	} else {
		n += 4 // raw sample rate
	}
	n += 4 // frame length
	n += 4 // payload bytes
	if ecc {
		n += 4 // ecc ratio (2x uint16)
	}
	if IsCompact(profile) {
		n += 2 // crc16
	} else {
		n += 4 // crc32
	}
	return n
}

// ReadBuf consumes bytes from the front of mainBuf, advancing only past
// bytes it has committed to, and attempts to complete the header a has
// been accumulating. The caller must have already matched the sync word
// and called SeedSync before the first invocation for a fresh header.
func (a *ASFH) ReadBuf(mainBuf *[]byte) (Status, error) {
	// Pull enough bytes to see the flags byte.
	if len(a.buf) < 5 {
		need := 5 - len(a.buf)
		front, rest := bits.SplitFront(*mainBuf, need)
		a.buf = append(a.buf, front...)
		*mainBuf = rest
		if len(a.buf) < 5 {
			return StatusIncomplete, nil
		}
	}

	flags := a.buf[4]
	profile := (flags >> profileShift) & profileMask
	ecc := flags&flagEcc != 0
	if !IsLossless(profile) && !IsCompact(profile) {
		return StatusIncomplete, ErrInvalidHeader
	}

	total := headerLen(profile, ecc)
	if len(a.buf) < total {
		need := total - len(a.buf)
		front, rest := bits.SplitFront(*mainBuf, need)
		a.buf = append(a.buf, front...)
		*mainBuf = rest
		if len(a.buf) < total {
			return StatusIncomplete, nil
		}
	}

	if err := a.parse(profile, ecc); err != nil {
		return StatusIncomplete, err
	}

	a.AllSet = true
	a.ForceFlush = flags&flagForceFlush != 0
	if a.ForceFlush {
		return StatusForceFlush, nil
	}
	return StatusComplete, nil
}

func (a *ASFH) parse(profile uint8, ecc bool) error {
	buf := a.buf
	flags := buf[4]

	a.Profile = profile
	a.EccEnabled = ecc
	a.LittleEndian = flags&flagLittle != 0

	i := 5
	a.BitDepthIndex = buf[i]
	i++
	a.Channels = buf[i]
	i++
	a.OverlapNumerator = buf[i]
	i++

	if IsCompact(profile) {
		idx := buf[i]
		i++
		if int(idx) >= len(Srates) {
			return ErrInvalidHeader
		}
		a.SampleRate = Srates[idx]
	} else {
		a.SampleRate = binary.BigEndian.Uint32(buf[i : i+4])
		i += 4
	}

	a.FrameLength = binary.BigEndian.Uint32(buf[i : i+4])
	i += 4

	a.PayloadBytes = binary.BigEndian.Uint32(buf[i : i+4])
	i += 4
	if a.PayloadBytes > MaxPayloadBytes {
		return ErrInvalidHeader
	}

	if ecc {
		a.EccRatio[0] = binary.BigEndian.Uint16(buf[i : i+2])
		i += 2
		a.EccRatio[1] = binary.BigEndian.Uint16(buf[i : i+2])
		i += 2
	}

	if IsCompact(profile) {
		a.CRC16 = binary.BigEndian.Uint16(buf[i : i+2])
		i += 2
	} else {
		a.CRC32 = binary.BigEndian.Uint32(buf[i : i+4])
		i += 4
	}

	a.TotalBytes = uint32(i) + a.PayloadBytes
	return nil
}

// Encode serialises a's fields into a header byte sequence beginning with
// the sync word. PayloadBytes and the profile's CRC (CRC32 or CRC16) are
// written as they stand, so the caller sets them once the payload is known.
// The force-flush bit comes from forceFlush, not a.ForceFlush; TotalBytes
// and AllSet are not written.
func (a *ASFH) Encode(forceFlush bool) []byte {
	var flags byte
	if forceFlush {
		flags |= flagForceFlush
	}
	if a.EccEnabled {
		flags |= flagEcc
	}
	if a.LittleEndian {
		flags |= flagLittle
	}
	flags |= (a.Profile & profileMask) << profileShift

	out := append([]byte(nil), FrameSignature[:]...)
	out = append(out, flags, a.BitDepthIndex, a.Channels, a.OverlapNumerator)

	if IsCompact(a.Profile) {
		idx := srateIndex(a.SampleRate)
		out = append(out, idx)
	} else {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], a.SampleRate)
		out = append(out, b[:]...)
	}

	var frameLen, payloadLen [4]byte
	binary.BigEndian.PutUint32(frameLen[:], a.FrameLength)
	binary.BigEndian.PutUint32(payloadLen[:], a.PayloadBytes)
	out = append(out, frameLen[:]...)
	out = append(out, payloadLen[:]...)

	if a.EccEnabled {
		var b [4]byte
		binary.BigEndian.PutUint16(b[0:2], a.EccRatio[0])
		binary.BigEndian.PutUint16(b[2:4], a.EccRatio[1])
		out = append(out, b[:]...)
	}

	if IsCompact(a.Profile) {
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], a.CRC16)
		out = append(out, b[:]...)
	} else {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], a.CRC32)
		out = append(out, b[:]...)
	}

	return out
}

func srateIndex(rate uint32) byte {
	for i, r := range Srates {
		if r == rate {
			return byte(i)
		}
	}
	return 0
}
