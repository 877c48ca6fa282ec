package core

import (
	"errors"
	"sync/atomic"

	"cableplot/protocol"
)

var (
	ErrBusy        = errors.New("dispatcher busy")
	ErrEmptyStream = protocol.ErrEmptyStream
	ErrTickPeriod  = errors.New("tick period must be positive")
)

// DispatchState is the lifecycle of the move dispatcher
type DispatchState uint32

const (
	StateIdle DispatchState = iota
	StateRunning
	StateComplete
)

func (s DispatchState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	}
	return "unknown"
}

// Dispatcher replays a command stream, one CommandByte per tick, onto the
// four motors. Every piece of move state lives here and is handed to the
// timer handler through the Timer, not through package globals.
type Dispatcher struct {
	sched  *Scheduler
	motors [protocol.MotorCount]*Motor
	timer  Timer

	stream []protocol.CommandByte
	index  int
	period uint32
	late   uint32

	state      uint32 // DispatchState, read outside the critical section
	onComplete func(executed int, late uint32)
}

// NewDispatcher creates an idle dispatcher for the given motors
func NewDispatcher(sched *Scheduler, motors [protocol.MotorCount]*Motor) *Dispatcher {
	d := &Dispatcher{sched: sched, motors: motors}
	d.timer.Handler = d.tick
	return d
}

// SetCompleteCallback registers a function run when a stream finishes.
// It runs inside the tick and must not block.
func (d *Dispatcher) SetCompleteCallback(fn func(executed int, late uint32)) {
	d.onComplete = fn
}

// Load takes ownership of stream and starts replaying it with tickUs
// microseconds between commands. A stream arriving while one is running
// is rejected with ErrBusy and the running move is left untouched.
func (d *Dispatcher) Load(stream []protocol.CommandByte, tickUs uint32) error {
	if len(stream) == 0 {
		return ErrEmptyStream
	}
	if tickUs == 0 {
		return ErrTickPeriod
	}

	state := enterCritical()
	defer exitCritical(state)

	now := d.sched.Clock().Now()
	if d.State() == StateRunning {
		RecordTiming(EvtMoveRejected, 0, now, uint32(len(stream)), 0)
		return ErrBusy
	}

	d.stream = stream
	d.index = 0
	d.late = 0
	d.period = TimerFromUS(tickUs)
	for _, m := range d.motors {
		m.Enable()
	}

	atomic.StoreUint32(&d.state, uint32(StateRunning))
	d.timer.WakeTime = now + d.period
	d.sched.Add(&d.timer)

	RecordTiming(EvtMoveLoaded, 0, now, uint32(len(stream)), tickUs)
	return nil
}

// tick runs one command. The tick after the last command disables the
// motors, leaving the final pattern energized for one period.
func (d *Dispatcher) tick(t *Timer) uint8 {
	if d.index >= len(d.stream) {
		d.finish()
		return SF_DONE
	}

	cmd := d.stream[d.index]
	for i, m := range d.motors {
		if a := cmd.Action(i); a != protocol.Hold {
			m.SetDirection(int8(a.Delta()))
			m.Step()
		}
	}
	d.index++

	// A late tick stretches the schedule instead of bursting to catch up
	now := d.sched.Now()
	t.WakeTime += d.period
	if !timerBefore(now, t.WakeTime) {
		d.late++
		RecordTiming(EvtTickLate, 0, now, uint32(d.index), now-t.WakeTime)
		t.WakeTime = now + d.period
	}
	return SF_RESCHEDULE
}

func (d *Dispatcher) finish() {
	for _, m := range d.motors {
		m.Disable()
	}
	executed := d.index
	d.stream = nil
	atomic.StoreUint32(&d.state, uint32(StateComplete))

	RecordTiming(EvtMoveComplete, 0, d.sched.Now(), uint32(executed), d.late)
	if d.onComplete != nil {
		d.onComplete(executed, d.late)
	}
}

// State returns the current dispatcher state
func (d *Dispatcher) State() DispatchState {
	return DispatchState(atomic.LoadUint32(&d.state))
}

// Progress returns the number of commands executed and the stream length
// of the running move.
func (d *Dispatcher) Progress() (executed, total int) {
	state := enterCritical()
	defer exitCritical(state)
	return d.index, len(d.stream)
}

// LateTicks returns how many ticks of the current or last move ran late
func (d *Dispatcher) LateTicks() uint32 {
	state := enterCritical()
	defer exitCritical(state)
	return d.late
}

// Positions returns a consistent snapshot of all motor positions
func (d *Dispatcher) Positions() protocol.Positions {
	state := enterCritical()
	defer exitCritical(state)

	var p protocol.Positions
	for i, m := range d.motors {
		p[i] = m.Position()
	}
	return p
}

// Motor returns one of the dispatcher's motors
func (d *Dispatcher) Motor(i int) *Motor {
	return d.motors[i]
}
