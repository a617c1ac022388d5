// Package monitor collects counters for a scrollback run.
package monitor

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Stats collects pipeline counters in a lock-free manner.
type Stats struct {
	received atomic.Uint64 // lines read from the source
	matched  atomic.Uint64 // lines that passed filtering
	stored   atomic.Uint64 // store slots written (chunks)
	split    atomic.Uint64 // lines that needed more than one slot
	evicted  atomic.Uint64
	start    time.Time
}

// NewStats creates a new statistics collector.
func NewStats() *Stats {
	return &Stats{start: time.Now()}
}

// RecordReceived counts a line read from the source.
func (s *Stats) RecordReceived() {
	s.received.Add(1)
}

// RecordMatch counts a line that passed filtering.
func (s *Stats) RecordMatch() {
	s.matched.Add(1)
}

// RecordStored counts the slots written for one inserted line.
func (s *Stats) RecordStored(chunks int) {
	s.stored.Add(uint64(chunks))
	if chunks > 1 {
		s.split.Add(1)
	}
}

// SetEvicted records the store's eviction total.
func (s *Stats) SetEvicted(n uint64) {
	s.evicted.Store(n)
}

// Received returns the number of lines read.
func (s *Stats) Received() uint64 { return s.received.Load() }

// Matched returns the number of lines that passed filtering.
func (s *Stats) Matched() uint64 { return s.matched.Load() }

// Stored returns the number of store slots written.
func (s *Stats) Stored() uint64 { return s.stored.Load() }

// Split returns how many lines were split across slots.
func (s *Stats) Split() uint64 { return s.split.Load() }

// Evicted returns the last recorded eviction total.
func (s *Stats) Evicted() uint64 { return s.evicted.Load() }

// Elapsed returns the time since collection started.
func (s *Stats) Elapsed() time.Duration {
	return time.Since(s.start)
}

// Summary returns a formatted summary string.
func (s *Stats) Summary() string {
	elapsed := s.Elapsed()
	received := s.Received()
	matched := s.Matched()

	matchRate := float64(0)
	if received > 0 {
		matchRate = float64(matched) / float64(received) * 100
	}
	throughput := float64(0)
	if sec := elapsed.Seconds(); sec > 0 {
		throughput = float64(received) / sec
	}

	return fmt.Sprintf(
		"── Summary ──\n"+
			"  Received lines: %d\n"+
			"  Matched lines:  %d (%.1f%%)\n"+
			"  Stored slots:   %d (%d split)\n"+
			"  Evicted slots:  %d\n"+
			"  Duration:       %s\n"+
			"  Throughput:     %.0f lines/s\n"+
			"─────────────",
		received, matched, matchRate,
		s.Stored(), s.Split(),
		s.Evicted(),
		elapsed.Round(time.Millisecond),
		throughput,
	)
}
