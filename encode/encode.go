// Package encode turns PCM into a stream of FrAD frames: it buffers
// incoming samples, cuts them into frames at profile-allowed sample
// counts, runs the matching fourier profile, optionally applies
// Reed-Solomon, computes the frame's CRC, and composes the ASFH header.
package encode

import (
	"github.com/pkg/errors"

	"github.com/ausocean/frad/asfh"
	"github.com/ausocean/frad/crc"
	"github.com/ausocean/frad/fourier"
	"github.com/ausocean/frad/internal/logging"
	"github.com/ausocean/frad/rs"
)

// Encoder holds the state needed to encode a stream of PCM into FrAD
// frames incrementally across arbitrarily chunked Process calls.
type Encoder struct {
	opts Options
	log  logging.Logger

	pending [][]float64 // PCM awaiting a full frame
	tail    [][]float64 // raw PCM duplicated into the next frame's head for overlap-add
	ended   bool        // Flush has already emitted the end-of-stream marker
}

// New validates opts and returns an Encoder. A nil logger installs
// logging.NopLogger.
func New(opts Options, logger logging.Logger) (*Encoder, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	opts.Logger = logger
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "encode: invalid options")
	}
	return &Encoder{opts: opts, log: logger}, nil
}

// frameSampleTarget returns the number of fresh (non-overlap) samples the
// next frame should consume from pending.
func (e *Encoder) frameSampleTarget() int {
	if asfh.IsCompact(e.opts.Profile) {
		target := e.opts.FrameSamples
		if target <= 0 {
			target = defaultFrameSamples
		}
		table := fourier.SmplsLITable()
		for _, n := range table {
			if n >= target {
				return n
			}
		}
		return table[len(table)-1]
	}
	return e.opts.FrameSamples
}

// buildFrame runs one chunk of PCM through the configured profile and ECC,
// and composes it into a header||payload byte sequence.
func (e *Encoder) buildFrame(chunk [][]float64, forceFlush bool) ([]byte, error) {
	var payload []byte
	var depthIndex int
	channels := e.opts.Channels

	switch e.opts.Profile {
	case asfh.Profile1:
		payload, depthIndex = fourier.AnalogueProfile1(chunk, e.opts.Depth, e.opts.SampleRate, e.opts.Level)
	case asfh.Profile4:
		format := fourier.FormatForDepth4(indexOfInt(fourier.Depths4[:], e.opts.Depth), e.opts.LittleEndian)
		payload = fourier.AnalogueProfile4(chunk, format)
		depthIndex = indexOfInt(fourier.Depths4[:], e.opts.Depth)
	default:
		var err error
		var ch int
		payload, depthIndex, ch, err = fourier.AnalogueProfile0(chunk, e.opts.Depth, e.opts.LittleEndian)
		if err != nil {
			return nil, err
		}
		channels = ch
	}

	a := &asfh.ASFH{
		Profile:          e.opts.Profile,
		SampleRate:       e.opts.SampleRate,
		Channels:         uint8(channels),
		BitDepthIndex:    uint8(depthIndex),
		FrameLength:      uint32(len(chunk)),
		LittleEndian:     e.opts.LittleEndian,
		OverlapNumerator: e.opts.OverlapNumerator,
		EccEnabled:       e.opts.EccEnabled,
	}

	if e.opts.EccEnabled {
		a.EccRatio = e.opts.EccRatio
		payload = rs.EncodeChunked(payload, int(e.opts.EccRatio[0]), int(e.opts.EccRatio[1]))
	}
	a.PayloadBytes = uint32(len(payload))

	if asfh.IsLossless(e.opts.Profile) {
		a.CRC32 = crc.CRC32(payload)
	} else {
		a.CRC16 = crc.CRC16ANSI(payload)
	}

	header := a.Encode(forceFlush)
	return append(header, payload...), nil
}

// Process buffers pcm and emits as many complete frames as it can as a
// single byte slice (possibly empty if not enough PCM has accumulated
// yet).
func (e *Encoder) Process(pcm [][]float64) ([]byte, error) {
	e.pending = append(e.pending, pcm...)

	var out []byte
	for {
		fresh := e.frameSampleTarget()
		if fresh <= 0 || len(e.pending) < fresh {
			break
		}

		chunk := make([][]float64, 0, len(e.tail)+fresh)
		chunk = append(chunk, e.tail...)
		chunk = append(chunk, e.pending[:fresh]...)
		e.pending = e.pending[fresh:]

		frame, err := e.buildFrame(chunk, false)
		if err != nil {
			return out, err
		}
		out = append(out, frame...)

		if asfh.IsCompact(e.opts.Profile) && e.opts.OverlapNumerator != 0 {
			olap := int(e.opts.OverlapNumerator)
			if olap < 2 {
				olap = 2
			}
			tailLen := len(chunk) / olap
			e.tail = append([][]float64(nil), chunk[len(chunk)-tailLen:]...)
		} else {
			e.tail = nil
		}
	}
	return out, nil
}

// Flush encodes any remaining buffered PCM as one final ordinary frame, then
// appends a zero-payload, force-flush-flagged marker frame that signals the
// container boundary without itself carrying audio to decode — mirroring
// decode.rs, where a force-flush header ends the stream immediately rather
// than having its payload run through the profile's digital() stage. It
// returns nil once the marker has already been emitted.
func (e *Encoder) Flush() []byte {
	if e.ended {
		return nil
	}
	e.ended = true

	var out []byte
	if len(e.pending) > 0 || len(e.tail) > 0 {
		chunk := append(append([][]float64(nil), e.tail...), e.pending...)
		e.pending = nil
		e.tail = nil

		frame, err := e.buildFrame(chunk, false)
		if err != nil {
			e.log.Error("flush frame encode failed", "err", err)
			return nil
		}
		out = append(out, frame...)
	}
	return append(out, e.buildEndMarker()...)
}

// buildEndMarker composes a zero-payload header with the force-flush flag
// set: the container-boundary marker decode.Process recognises to end the
// stream and flush its retained overlap tail.
func (e *Encoder) buildEndMarker() []byte {
	a := &asfh.ASFH{
		Profile:      e.opts.Profile,
		SampleRate:   e.opts.SampleRate,
		Channels:     uint8(e.opts.Channels),
		LittleEndian: e.opts.LittleEndian,
		EccEnabled:   e.opts.EccEnabled,
	}
	if e.opts.EccEnabled {
		a.EccRatio = e.opts.EccRatio
	}
	if asfh.IsLossless(e.opts.Profile) {
		a.CRC32 = crc.CRC32(nil)
	} else {
		a.CRC16 = crc.CRC16ANSI(nil)
	}
	return a.Encode(true)
}

func indexOfInt(table []int, v int) int {
	for i, d := range table {
		if d == v {
			return i
		}
	}
	return 0
}
