package decode

import (
	"math"
	"testing"

	"github.com/ausocean/frad/asfh"
	"github.com/ausocean/frad/crc"
	"github.com/ausocean/frad/fourier"
)

func makeSinePCM(samples, channels int) [][]float64 {
	pcm := make([][]float64, samples)
	for n := range pcm {
		row := make([]float64, channels)
		for c := range row {
			row[c] = 0.5 * math.Sin(2*math.Pi*float64(n)/float64(samples))
		}
		pcm[n] = row
	}
	return pcm
}

func buildFrame(t *testing.T, a *asfh.ASFH, payload []byte, forceFlush bool) []byte {
	t.Helper()
	header := a.Encode(forceFlush)
	return append(header, payload...)
}

func losslessFrame(t *testing.T, samples, channels int, srate uint32) ([]byte, [][]float64) {
	t.Helper()
	pcm := makeSinePCM(samples, channels)
	payload, depthIndex, ch, err := fourier.AnalogueProfile0(pcm, 32, false)
	if err != nil {
		t.Fatalf("AnalogueProfile0: %v", err)
	}
	a := &asfh.ASFH{
		Profile:       asfh.Profile0,
		SampleRate:    srate,
		Channels:      uint8(ch),
		BitDepthIndex: uint8(depthIndex),
		FrameLength:   uint32(samples),
		PayloadBytes:  uint32(len(payload)),
		CRC32:         crc.CRC32(payload),
	}
	return buildFrame(t, a, payload, false), pcm
}

func TestProcessDecodesLosslessFrame(t *testing.T) {
	stream, pcm := losslessFrame(t, 256, 2, 48000)

	d := New(false, nil)
	out, srate, reconfig := d.Process(stream)
	if reconfig {
		t.Fatal("unexpected reconfig on first frame")
	}
	if srate != 48000 {
		t.Errorf("srate = %d, want 48000", srate)
	}
	if len(out) != len(pcm) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(pcm))
	}
	for i := range pcm {
		for c := range pcm[i] {
			if math.Abs(out[i][c]-pcm[i][c]) > 1e-6 {
				t.Fatalf("sample [%d][%d] = %v, want %v", i, c, out[i][c], pcm[i][c])
			}
		}
	}
}

func TestProcessHandlesByteAtATimeChunking(t *testing.T) {
	stream, pcm := losslessFrame(t, 64, 1, 44100)

	d := New(false, nil)
	var out [][]float64
	for i := 0; i < len(stream); i++ {
		chunk, _, _ := d.Process(stream[i : i+1])
		out = append(out, chunk...)
	}
	if len(out) != len(pcm) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(pcm))
	}
}

func TestProcessResyncsAcrossGarbagePrefix(t *testing.T) {
	stream, pcm := losslessFrame(t, 64, 1, 44100)
	garbage := []byte{0x01, 0x02, 0x03, 0xff, 0xd0, 0x00}
	noisy := append(garbage, stream...)

	d := New(false, nil)
	out, _, _ := d.Process(noisy)
	if len(out) != len(pcm) {
		t.Fatalf("len(out) = %d, want %d after garbage prefix", len(out), len(pcm))
	}
}

func TestProcessDetectsReconfig(t *testing.T) {
	first, firstPCM := losslessFrame(t, 128, 1, 48000)
	second, _ := losslessFrame(t, 128, 1, 44100)

	d := New(false, nil)
	stream := append(append([]byte{}, first...), second...)

	out, srate, reconfig := d.Process(stream)
	if !reconfig {
		t.Fatal("expected reconfig when sample rate changes between frames")
	}
	if srate != 48000 {
		t.Errorf("srate = %d, want 48000 (the rate in effect before the change)", srate)
	}
	if len(out) != len(firstPCM) {
		t.Fatalf("len(out) = %d, want %d (only first frame emitted before reconfig)", len(out), len(firstPCM))
	}
}

func TestProcessIncompleteHeaderReturnsEmpty(t *testing.T) {
	stream, _ := losslessFrame(t, 32, 1, 8000)

	d := New(false, nil)
	out, _, reconfig := d.Process(stream[:6])
	if len(out) != 0 {
		t.Errorf("len(out) = %d, want 0 for a truncated header", len(out))
	}
	if reconfig {
		t.Error("unexpected reconfig on incomplete header")
	}
}

func TestProcessForceFlushEndsStreamWithoutDecodingItsPayload(t *testing.T) {
	pcm := makeSinePCM(128, 1)
	payload, depthIndex, ch, err := fourier.AnalogueProfile0(pcm, 32, false)
	if err != nil {
		t.Fatalf("AnalogueProfile0: %v", err)
	}
	a := &asfh.ASFH{
		Profile:       asfh.Profile0,
		SampleRate:    48000,
		Channels:      uint8(ch),
		BitDepthIndex: uint8(depthIndex),
		FrameLength:   128,
		PayloadBytes:  uint32(len(payload)),
		CRC32:         crc.CRC32(payload),
	}
	stream := buildFrame(t, a, payload, true)

	d := New(false, nil)
	out, srate, reconfig := d.Process(stream)
	if reconfig {
		t.Fatal("unexpected reconfig on a lone force-flush frame")
	}
	if srate != 48000 {
		t.Errorf("srate = %d, want 48000", srate)
	}
	if len(out) != 0 {
		t.Fatalf("len(out) = %d, want 0; a force-flush frame ends the stream without decoding its own payload", len(out))
	}
}

func TestFlushReturnsOverlapFragment(t *testing.T) {
	d := New(false, nil)
	d.asfh.Profile = asfh.Profile1
	d.asfh.SampleRate = 48000
	d.overlapFragment = [][]float64{{0.1}, {0.2}}

	out := d.Flush()
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	if len(d.overlapFragment) != 0 {
		t.Error("Flush did not clear overlapFragment")
	}
}
