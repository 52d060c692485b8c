package dashboard

import "time"

// Schedule is a re-armable interval timer with explicit cancellation. It does
// not own a goroutine: the driver arms it, delivers the firing (tea.Tick in
// the TUI, FakeClock in tests) and asks Accept whether the firing still
// counts. Firings from a cancelled or re-armed timer are rejected.
type Schedule struct {
	Interval time.Duration

	seq   uint64
	armed bool
	next  time.Time
}

// NewSchedule returns a disarmed schedule.
func NewSchedule(interval time.Duration) *Schedule {
	return &Schedule{Interval: interval}
}

// Arm (re)starts the timer at now and returns the sequence number the
// resulting firing must carry.
func (s *Schedule) Arm(now time.Time) uint64 {
	s.seq++
	s.armed = true
	s.next = now.Add(s.Interval)
	return s.seq
}

// Cancel disarms the timer. Outstanding firings are rejected.
func (s *Schedule) Cancel() {
	s.seq++
	s.armed = false
}

// Accept reports whether a firing tagged seq belongs to the live timer.
func (s *Schedule) Accept(seq uint64) bool {
	return s.armed && seq == s.seq
}

// Armed reports whether the timer is running.
func (s *Schedule) Armed() bool {
	return s.armed
}

// Next is when the live timer fires.
func (s *Schedule) Next() time.Time {
	return s.next
}

// Due reports whether the live timer has elapsed at now.
func (s *Schedule) Due(now time.Time) bool {
	return s.armed && !now.Before(s.next)
}
