package logging

import "testing"

func TestNopLoggerDoesNotPanic(t *testing.T) {
	var l Logger = NopLogger{}
	l.Debug("msg", "k", "v")
	l.Info("msg")
	l.Warning("msg")
	l.Error("msg")
}

func TestStatsUpdateAccumulates(t *testing.T) {
	s := NewStats()
	s.Update(1000, 48000, 48000)
	s.Update(2000, 48000, 48000)

	if got := s.TotalSize(); got != 3000 {
		t.Errorf("TotalSize() = %d, want 3000", got)
	}
	if d := s.Duration(); d < 1.99 || d > 2.01 {
		t.Errorf("Duration() = %v, want ~2.0", d)
	}
	if br := s.Bitrate(); br < 11900 || br > 12100 {
		t.Errorf("Bitrate() = %v, want ~12000", br)
	}
}

func TestStatsMultipleSampleRates(t *testing.T) {
	s := NewStats()
	s.Update(1000, 44100, 44100) // 1s at 44.1kHz
	s.Update(1000, 8000, 8000)   // 1s at 8kHz

	if d := s.Duration(); d < 1.99 || d > 2.01 {
		t.Errorf("Duration() = %v, want ~2.0", d)
	}
}

func TestStatsBlockUnblockExcludesIdleTime(t *testing.T) {
	s := NewStats()
	s.Update(1000, 48000, 48000)

	s.Block()
	s.Unblock() // no time elapsed in this synchronous test, but must not panic

	if s.Speed() < 0 {
		t.Errorf("Speed() = %v, want non-negative", s.Speed())
	}
}

func TestStatsZeroDurationBitrateIsZero(t *testing.T) {
	s := NewStats()
	if s.Bitrate() != 0 {
		t.Errorf("Bitrate() on empty Stats = %v, want 0", s.Bitrate())
	}
}
