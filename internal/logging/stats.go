package logging

import "time"

// Stats accumulates total stream size, per-sample-rate duration and
// bitrate, and coding speed across a decode or encode run.
type Stats struct {
	startTime time.Time
	blockedAt time.Time
	blocked   bool

	totalSize uint64
	duration  map[uint32]uint64 // srate -> samples
	bitrate   map[uint32]uint64 // srate -> bytes
}

// NewStats returns a Stats with its clock started.
func NewStats() *Stats {
	return &Stats{
		startTime: time.Now(),
		duration:  make(map[uint32]uint64),
		bitrate:   make(map[uint32]uint64),
	}
}

// Update accumulates one frame's worth of size, sample count and sample
// rate into the running totals.
func (s *Stats) Update(size uint64, samples int, srate uint32) {
	s.totalSize += size
	s.duration[srate] += uint64(samples)
	s.bitrate[srate] += size
}

// Duration returns the total duration of the stream in seconds.
func (s *Stats) Duration() float64 {
	var total float64
	for srate, samples := range s.duration {
		if srate == 0 {
			continue
		}
		total += float64(samples) / float64(srate)
	}
	return total
}

// Bitrate returns the total bitrate of the stream in bits per second.
func (s *Stats) Bitrate() float64 {
	var totalBits float64
	for _, bytes := range s.bitrate {
		totalBits += float64(bytes) * 8
	}
	d := s.Duration()
	if d <= 0 {
		return 0
	}
	return totalBits / d
}

// Speed returns the coding speed, in seconds of audio processed per second
// of wall-clock time elapsed.
func (s *Stats) Speed() float64 {
	elapsed := time.Since(s.startTime).Seconds()
	d := s.Duration()
	if elapsed <= 0 {
		return 0
	}
	return d / elapsed
}

// TotalSize returns the total stream size seen so far, in bytes.
func (s *Stats) TotalSize() uint64 { return s.totalSize }

// Block pauses the coding-speed clock, e.g. while waiting on I/O that
// shouldn't count against coding speed.
func (s *Stats) Block() {
	s.blockedAt = time.Now()
	s.blocked = true
}

// Unblock resumes the coding-speed clock after a Block, folding the
// blocked interval out of the elapsed time.
func (s *Stats) Unblock() {
	if !s.blocked {
		return
	}
	s.startTime = s.startTime.Add(time.Since(s.blockedAt))
	s.blocked = false
}
