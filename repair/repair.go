// Package repair mirrors decode's frame-finding and ECC-correction
// machinery, but re-emits corrected encoded bytes instead of PCM: it is
// the tool that turns a partially corrupted FrAD file into a clean one
// without touching its audio content.
package repair

import (
	"github.com/ausocean/frad/asfh"
	"github.com/ausocean/frad/bits"
	"github.com/ausocean/frad/crc"
	"github.com/ausocean/frad/internal/logging"
	"github.com/ausocean/frad/rs"
)

// Repairer holds the state needed to repair a stream of FrAD frames
// incrementally across arbitrarily chunked Process calls.
type Repairer struct {
	asfh *asfh.ASFH

	buffer   []byte
	fixError bool
	log      logging.Logger
}

// New returns a Repairer. fixError enables Reed-Solomon correction of
// frames whose CRC mismatches; such frames are then re-encoded with fresh
// parity so the corrected bytes round-trip cleanly. A nil logger installs
// logging.NopLogger.
func New(fixError bool, logger logging.Logger) *Repairer {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Repairer{
		asfh:     asfh.New(),
		fixError: fixError,
		log:      logger,
	}
}

// repairFrame returns frad (the frame's raw payload bytes) unchanged if no
// correction was needed or possible, or re-encoded with fresh parity if a
// CRC mismatch was fixed.
func (r *Repairer) repairFrame(frad []byte) []byte {
	a := r.asfh
	if !a.EccEnabled {
		return frad
	}

	mismatch := false
	if asfh.IsLossless(a.Profile) {
		mismatch = crc.CRC32(frad) != a.CRC32
	} else {
		mismatch = crc.CRC16ANSI(frad) != a.CRC16
	}
	if !mismatch {
		return frad
	}
	if !r.fixError {
		r.log.Warning("crc mismatch, fix_error disabled, passing frame through uncorrected")
		return frad
	}

	dlen, nsym := int(a.EccRatio[0]), int(a.EccRatio[1])
	corrected := rs.DecodeChunked(frad, dlen, nsym)
	r.log.Info("corrected frame, re-encoding parity")
	return rs.EncodeChunked(corrected, dlen, nsym)
}

// Process feeds stream into the repairer's buffer and returns as many
// complete, repaired frames (header||payload) as it can.
func (r *Repairer) Process(stream []byte) []byte {
	r.buffer = append(r.buffer, stream...)

	var out []byte
	for {
		if r.asfh.AllSet {
			if len(r.buffer) < int(r.asfh.PayloadBytes) {
				break
			}
			var frad []byte
			frad, r.buffer = bits.SplitFront(r.buffer, int(r.asfh.PayloadBytes))

			repaired := r.repairFrame(frad)
			a := r.asfh
			if asfh.IsLossless(a.Profile) {
				a.CRC32 = crc.CRC32(repaired)
			} else {
				a.CRC16 = crc.CRC16ANSI(repaired)
			}
			a.PayloadBytes = uint32(len(repaired))

			out = append(out, a.Encode(a.ForceFlush)...)
			out = append(out, repaired...)
			r.asfh.Clear()
			continue
		}

		if !r.asfh.Started() {
			i, found := bits.FindPattern(r.buffer, asfh.FrameSignature[:])
			if !found {
				if len(r.buffer) > 3 {
					r.buffer = r.buffer[len(r.buffer)-3:]
				}
				break
			}
			r.buffer = r.buffer[i:]
			var sync []byte
			sync, r.buffer = bits.SplitFront(r.buffer, 4)
			_ = sync
			r.asfh.SeedSync()
		}

		status, err := r.asfh.ReadBuf(&r.buffer)
		if err != nil {
			r.log.Error("invalid header", "err", err)
			r.asfh.Clear()
			continue
		}

		if status == asfh.StatusIncomplete {
			return out
		}
		// StatusComplete and StatusForceFlush both leave AllSet true; the
		// AllSet branch above consumes and re-emits the payload once enough
		// of it has arrived. Repair has no PCM overlap state to flush, so
		// force-flush needs no special handling beyond that.
	}

	return out
}
