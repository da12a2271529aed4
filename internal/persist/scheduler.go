// Package persist schedules debounced writes of whole-collection snapshots.
package persist

import (
	"sync"
	"time"
)

// Scheduler coalesces bursts of ScheduleWrite calls into one call of the
// write function after a quiet period. Each new snapshot cancels and replaces
// the pending one. Writes never run concurrently and a snapshot older than
// one already written is dropped.
type Scheduler[T any] struct {
	delay time.Duration
	write func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending *T
	seq     uint64
	closed  bool

	writeMu     sync.Mutex
	lastWritten uint64
}

// NewScheduler creates a scheduler. A delay <= 0 makes ScheduleWrite write
// synchronously.
func NewScheduler[T any](delay time.Duration, write func(T)) *Scheduler[T] {
	return &Scheduler[T]{delay: delay, write: write}
}

// ScheduleWrite replaces any pending snapshot with snapshot and restarts the
// quiet period. It is a no-op after Close.
func (s *Scheduler[T]) ScheduleWrite(snapshot T) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if s.delay <= 0 {
		s.pending = nil
		s.mu.Unlock()
		s.run(seq, snapshot)
		return
	}

	s.pending = &snapshot
	s.timer = time.AfterFunc(s.delay, func() { s.fire(seq) })
	s.mu.Unlock()
}

// Flush writes the pending snapshot now. It reports whether anything was
// written.
func (s *Scheduler[T]) Flush() bool {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return false
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	snapshot := *s.pending
	seq := s.seq
	s.pending = nil
	s.mu.Unlock()

	return s.run(seq, snapshot)
}

// Cancel drops the pending snapshot without writing it. It reports whether a
// write was pending.
func (s *Scheduler[T]) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	hadPending := s.pending != nil
	s.pending = nil
	return hadPending
}

// Pending reports whether a write is waiting for its quiet period to end.
func (s *Scheduler[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Close stops the scheduler. With flush set pending snapshots are written
// first, including any the write function schedules; otherwise they are
// discarded.
func (s *Scheduler[T]) Close(flush bool) {
	if flush {
		for s.Flush() {
		}
	} else {
		s.Cancel()
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Scheduler[T]) fire(seq uint64) {
	s.mu.Lock()
	if s.pending == nil || seq != s.seq {
		s.mu.Unlock()
		return
	}
	snapshot := *s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	s.run(seq, snapshot)
}

func (s *Scheduler[T]) run(seq uint64, snapshot T) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if seq <= s.lastWritten {
		return false
	}
	s.lastWritten = seq
	s.write(snapshot)
	return true
}
