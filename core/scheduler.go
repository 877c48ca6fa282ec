package core

// Timer represents a scheduled event
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler keeps timers sorted by wake time and runs the due ones from
// Dispatch. It is owned by a Controller instead of living in package
// state, so several simulated controllers can run in one process.
type Scheduler struct {
	clock Clock
	list  *Timer
	now   uint32
}

// NewScheduler creates an empty scheduler on the given clock
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{clock: clock, now: clock.Now()}
}

// Now returns the time of the current (or last) Dispatch
func (s *Scheduler) Now() uint32 {
	return s.now
}

// Clock returns the scheduler's clock
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// Add inserts a timer. The timer must not already be scheduled.
func (s *Scheduler) Add(t *Timer) {
	state := enterCritical()
	defer exitCritical(state)
	s.insert(t)
}

// Remove unschedules a timer, reporting whether it was pending
func (s *Scheduler) Remove(t *Timer) bool {
	state := enterCritical()
	defer exitCritical(state)

	for p := &s.list; *p != nil; p = &(*p).next {
		if *p == t {
			*p = t.next
			t.next = nil
			return true
		}
	}
	return false
}

// Pending returns the number of scheduled timers
func (s *Scheduler) Pending() int {
	state := enterCritical()
	defer exitCritical(state)

	n := 0
	for t := s.list; t != nil; t = t.next {
		n++
	}
	return n
}

// insert keeps the list sorted; equal wake times run in insertion order
func (s *Scheduler) insert(t *Timer) {
	if s.list == nil || timerBefore(t.WakeTime, s.list.WakeTime) {
		t.next = s.list
		s.list = t
		return
	}

	current := s.list
	for current.next != nil && !timerBefore(t.WakeTime, current.next.WakeTime) {
		current = current.next
	}

	t.next = current.next
	current.next = t
}

// Dispatch samples the clock and runs every timer that is due
func (s *Scheduler) Dispatch() {
	state := enterCritical()
	defer exitCritical(state)

	s.now = s.clock.Now()
	for s.list != nil && !timerBefore(s.now, s.list.WakeTime) {
		timer := s.list
		s.list = timer.next
		timer.next = nil

		if timer.Handler(timer) == SF_RESCHEDULE {
			s.insert(timer)
		}
	}
}
