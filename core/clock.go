package core

import "sync/atomic"

// ClockFreq is the tick rate of every Clock, 1 MHz
const ClockFreq = 1000000

// Clock is a free-running 32-bit tick counter. It wraps roughly every 71
// minutes; all comparisons go through timerBefore.
type Clock interface {
	Now() uint32
}

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() uint32

func (f ClockFunc) Now() uint32 {
	return f()
}

// ManualClock is a Clock advanced explicitly, for simulation and tests
type ManualClock struct {
	ticks uint32
}

func (c *ManualClock) Now() uint32 {
	return atomic.LoadUint32(&c.ticks)
}

// Set sets the current tick count
func (c *ManualClock) Set(ticks uint32) {
	atomic.StoreUint32(&c.ticks, ticks)
}

// Advance moves the clock forward by us microseconds
func (c *ManualClock) Advance(us uint32) {
	atomic.AddUint32(&c.ticks, TimerFromUS(us))
}

// TimerFromUS converts microseconds to clock ticks
func TimerFromUS(us uint32) uint32 {
	return uint32(uint64(us) * ClockFreq / 1000000)
}

// TimerToUS converts clock ticks to microseconds
func TimerToUS(ticks uint32) uint32 {
	return uint32(uint64(ticks) * 1000000 / ClockFreq)
}

// timerBefore reports whether a is earlier than b, across wraparound
func timerBefore(a, b uint32) bool {
	return int32(a-b) < 0
}
