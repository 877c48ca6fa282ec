package core

import (
	"testing"
)

func TestSchedulerOrder(t *testing.T) {
	clock := &ManualClock{}
	sched := NewScheduler(clock)

	var fired []int
	mk := func(id int, wake uint32) *Timer {
		return &Timer{WakeTime: wake, Handler: func(*Timer) uint8 {
			fired = append(fired, id)
			return SF_DONE
		}}
	}
	sched.Add(mk(3, 300))
	sched.Add(mk(1, 100))
	sched.Add(mk(2, 200))
	sched.Add(mk(4, 200))

	clock.Set(250)
	sched.Dispatch()
	if len(fired) != 3 || fired[0] != 1 || fired[1] != 2 || fired[2] != 4 {
		t.Errorf("Expected timers 1,2,4 to fire in order, got %v", fired)
	}
	if sched.Pending() != 1 {
		t.Errorf("Expected 1 pending timer, got %d", sched.Pending())
	}
	if sched.Now() != 250 {
		t.Errorf("Expected dispatch time 250, got %d", sched.Now())
	}
}

func TestSchedulerReschedule(t *testing.T) {
	clock := &ManualClock{}
	sched := NewScheduler(clock)

	count := 0
	timer := &Timer{WakeTime: 10, Handler: func(t *Timer) uint8 {
		count++
		t.WakeTime += 10
		if count == 3 {
			return SF_DONE
		}
		return SF_RESCHEDULE
	}}
	sched.Add(timer)

	for now := uint32(0); now <= 100; now += 5 {
		clock.Set(now)
		sched.Dispatch()
	}
	if count != 3 {
		t.Errorf("Expected 3 firings, got %d", count)
	}
	if sched.Pending() != 0 {
		t.Errorf("Expected no pending timers, got %d", sched.Pending())
	}
}

func TestSchedulerWraparound(t *testing.T) {
	clock := &ManualClock{}
	clock.Set(0xfffffff0)
	sched := NewScheduler(clock)

	fired := false
	sched.Add(&Timer{WakeTime: 0x10, Handler: func(*Timer) uint8 {
		fired = true
		return SF_DONE
	}})

	sched.Dispatch()
	if fired {
		t.Error("Timer past the wrap fired early")
	}
	clock.Set(0x0f)
	sched.Dispatch()
	if fired {
		t.Error("Timer fired one tick early")
	}
	clock.Set(0x10)
	sched.Dispatch()
	if !fired {
		t.Error("Timer did not fire after wraparound")
	}
}

func TestSchedulerRemove(t *testing.T) {
	sched := NewScheduler(&ManualClock{})
	a := &Timer{WakeTime: 1, Handler: func(*Timer) uint8 { return SF_DONE }}
	b := &Timer{WakeTime: 2, Handler: func(*Timer) uint8 { return SF_DONE }}
	sched.Add(a)
	sched.Add(b)

	if !sched.Remove(b) {
		t.Error("Expected b to be removed")
	}
	if sched.Remove(b) {
		t.Error("Expected second remove to report false")
	}
	if sched.Pending() != 1 {
		t.Errorf("Expected 1 pending timer, got %d", sched.Pending())
	}
}

func TestTimerConversion(t *testing.T) {
	if TimerFromUS(2000) != 2000 {
		t.Errorf("Expected 2000 ticks, got %d", TimerFromUS(2000))
	}
	if TimerToUS(TimerFromUS(123456)) != 123456 {
		t.Error("Tick conversion does not round-trip")
	}
	clock := &ManualClock{}
	clock.Advance(1500)
	if clock.Now() != 1500 {
		t.Errorf("Expected 1500, got %d", clock.Now())
	}
}
