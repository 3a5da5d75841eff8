// Package decode turns a stream of FrAD frames back into PCM: it finds
// frame boundaries, parses headers incrementally, corrects or strips ECC,
// dispatches to the right fourier profile, and stitches frames back
// together across the overlap-add boundary.
package decode

import (
	"github.com/ausocean/frad/asfh"
	"github.com/ausocean/frad/bits"
	"github.com/ausocean/frad/crc"
	"github.com/ausocean/frad/fourier"
	"github.com/ausocean/frad/internal/logging"
	"github.com/ausocean/frad/rs"
)

// Decoder holds the state needed to decode a stream of FrAD frames
// incrementally across arbitrarily chunked Process calls.
type Decoder struct {
	asfh *asfh.ASFH
	info *asfh.ASFH

	buffer          []byte
	overlapFragment [][]float64

	fixError bool
	log      logging.Logger
	stats    *logging.Stats
}

// New returns a Decoder. fixError enables Reed-Solomon error correction
// when a CRC mismatch is detected on an ECC-protected frame; otherwise ECC
// parity is stripped without attempting correction. A nil logger installs
// logging.NopLogger.
func New(fixError bool, logger logging.Logger) *Decoder {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Decoder{
		asfh:     asfh.New(),
		info:     asfh.New(),
		fixError: fixError,
		log:      logger,
		stats:    logging.NewStats(),
	}
}

// Stats returns the decoder's running stream statistics.
func (d *Decoder) Stats() *logging.Stats { return d.stats }

// overlap applies forward-linear overlap-add using the tail retained from
// the previous frame, then splits off a new tail for compact profiles with
// overlap enabled.
func (d *Decoder) overlap(frame [][]float64) [][]float64 {
	if len(d.overlapFragment) > 0 && len(frame) >= len(d.overlapFragment) {
		n := len(d.overlapFragment)
		fadeIn := bits.Linspace(0, 1, n)
		fadeOut := bits.Linspace(1, 0, n)
		channels := int(d.asfh.Channels)
		for c := 0; c < channels; c++ {
			for i := 0; i < n; i++ {
				frame[i][c] = frame[i][c]*fadeIn[i] + d.overlapFragment[i][c]*fadeOut[i]
			}
		}
	}

	var next [][]float64
	if asfh.IsCompact(d.asfh.Profile) && d.asfh.OverlapNumerator != 0 {
		olap := int(d.asfh.OverlapNumerator)
		if olap < 2 {
			olap = 2
		}
		splitAt := (len(frame) * (olap - 1)) / olap
		next = append([][]float64(nil), frame[splitAt:]...)
		frame = frame[:splitAt]
	}
	d.overlapFragment = next
	return frame
}

// decodeFrame runs the ECC and fourier stages over one frame's payload
// bytes, already split from the stream buffer.
func (d *Decoder) decodeFrame(frad []byte) ([][]float64, error) {
	a := d.asfh
	if a.EccEnabled {
		mismatch := false
		if asfh.IsLossless(a.Profile) {
			mismatch = crc.CRC32(frad) != a.CRC32
		} else {
			mismatch = crc.CRC16ANSI(frad) != a.CRC16
		}
		dlen, nsym := int(a.EccRatio[0]), int(a.EccRatio[1])
		if mismatch {
			d.log.Warning("crc mismatch on ecc-protected frame", "fixError", d.fixError)
		}
		if d.fixError && mismatch {
			frad = rs.DecodeChunked(frad, dlen, nsym)
		} else {
			frad = rs.Unecc(frad, dlen, nsym)
		}
	}

	switch a.Profile {
	case asfh.Profile1:
		return fourier.DigitalProfile1(frad, int(a.BitDepthIndex), int(a.Channels), a.SampleRate)
	case asfh.Profile4:
		format := fourier.FormatForDepth4(int(a.BitDepthIndex), a.LittleEndian)
		return fourier.DigitalProfile4(frad, int(a.Channels), format), nil
	default:
		return fourier.DigitalProfile0(frad, int(a.BitDepthIndex), int(a.Channels), a.LittleEndian), nil
	}
}

// Process feeds stream into the decoder's buffer and decodes as many
// complete frames as it can. It returns the PCM decoded so far, the
// sample rate it was decoded at, and whether a critical parameter change
// (sample rate, channels, bit depth or profile) was detected mid-call — in
// which case decoding stops early so the caller can start a new output
// stream at the new parameters.
func (d *Decoder) Process(stream []byte) (out [][]float64, srate uint32, reconfig bool) {
	d.buffer = append(d.buffer, stream...)

	for {
		if d.asfh.AllSet {
			if len(d.buffer) < int(d.asfh.PayloadBytes) {
				break
			}
			var frad []byte
			frad, d.buffer = bits.SplitFront(d.buffer, int(d.asfh.PayloadBytes))

			pcmFrame, err := d.decodeFrame(frad)
			if err != nil {
				d.log.Error("frame decode failed", "err", err)
				d.asfh.Clear()
				continue
			}

			pcmFrame = d.overlap(pcmFrame)
			d.log.Debug("frame decoded", "samples", len(pcmFrame))
			d.stats.Update(uint64(d.asfh.TotalBytes), len(pcmFrame), d.asfh.SampleRate)
			out = append(out, pcmFrame...)
			d.asfh.Clear()
			continue
		}

		if !d.asfh.Started() {
			i, found := bits.FindPattern(d.buffer, asfh.FrameSignature[:])
			if !found {
				// No full sync word present; retain only the last 3 bytes,
				// which is as much of a split sync word as could still be
				// waiting on the next call.
				d.log.Debug("no sync word in buffer, awaiting more data")
				if len(d.buffer) > 3 {
					d.buffer = d.buffer[len(d.buffer)-3:]
				}
				break
			}
			d.buffer = d.buffer[i:]
			var sync []byte
			sync, d.buffer = bits.SplitFront(d.buffer, 4)
			_ = sync
			d.asfh.SeedSync()
		}

		status, err := d.asfh.ReadBuf(&d.buffer)
		if err != nil {
			d.log.Error("invalid header", "err", err)
			d.asfh.Clear()
			continue
		}

		switch status {
		case asfh.StatusIncomplete:
			return out, d.info.SampleRate, false

		case asfh.StatusForceFlush:
			// Mirrors decode.rs: a force-flush header ends the stream right
			// here. Its own payload, if any, is never run through the
			// profile's digital() stage — only the overlap tail from the
			// frame before it is emitted.
			srateAtFlush := d.asfh.SampleRate
			out = append(out, d.Flush()...)
			d.asfh.Clear()
			return out, srateAtFlush, false

		case asfh.StatusComplete:
			if !d.asfh.CritEq(d.info) {
				if d.info.SampleRate != 0 || d.info.Channels != 0 {
					// The new header (d.asfh) stays parsed and AllSet so its
					// payload, already waiting in d.buffer, is decoded on the
					// next Process call once the caller has reacted to the
					// reconfiguration.
					prevSrate := d.info.SampleRate
					d.log.Info("critical parameters changed", "prevSrate", prevSrate, "srate", d.asfh.SampleRate)
					out = append(out, d.Flush()...)
					infoCopy := *d.asfh
					d.info = &infoCopy
					return out, prevSrate, true
				}
				infoCopy := *d.asfh
				d.info = &infoCopy
			}
		}
	}

	return out, d.info.SampleRate, false
}

// Flush drains and returns the retained overlap-add tail without touching
// header state. Called on a forced flush, a critical reconfiguration, or
// end of stream.
func (d *Decoder) Flush() [][]float64 {
	out := d.overlapFragment
	d.stats.Update(0, len(d.overlapFragment), d.asfh.SampleRate)
	d.overlapFragment = nil
	return out
}
