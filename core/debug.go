package core

import "strconv"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TimingEvent captures a dispatch event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	Arg       uint8  // Event-specific small argument
	Clock     uint32 // Clock at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtMoveLoaded     = 1 // v1=stream length, v2=tick us
	EvtMoveRejected   = 2 // v1=stream length
	EvtTickLate       = 3 // v1=command index, v2=ticks late
	EvtMoveComplete   = 4 // v1=commands executed, v2=late ticks
	EvtFrameDiscarded = 5 // arg=reason, v1=bytes dropped
	EvtPositionQuery  = 6
)

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	timingRing     [TimingRingSize]TimingEvent
	timingRingHead uint8
	timingEnabled  bool = true

	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine.
// Call this from main() after SetDebugWriter.
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message without blocking; it drops the
// message when the queue is full or async output was never started.
func DebugAsync(msg string) {
	if !debugEnabled || debugChan == nil {
		return
	}
	select {
	case debugChan <- msg:
	default:
	}
}

// RecordTiming captures a timing event in the ring buffer
func RecordTiming(eventType, arg uint8, clock, value1, value2 uint32) {
	if !timingEnabled {
		return
	}
	idx := timingRingHead
	timingRing[idx] = TimingEvent{
		EventType: eventType,
		Arg:       arg,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	timingRingHead = (idx + 1) % TimingRingSize
}

// TimingEvents returns the recorded events from oldest to newest
func TimingEvents() []TimingEvent {
	events := make([]TimingEvent, 0, TimingRingSize)
	start := timingRingHead
	for i := uint8(0); i < TimingRingSize; i++ {
		evt := timingRing[(start+i)%TimingRingSize]
		if evt.EventType != 0 {
			events = append(events, evt)
		}
	}
	return events
}

func eventName(eventType uint8) string {
	switch eventType {
	case EvtMoveLoaded:
		return "MOVE_LOADED"
	case EvtMoveRejected:
		return "MOVE_REJECTED"
	case EvtTickLate:
		return "TICK_LATE!"
	case EvtMoveComplete:
		return "MOVE_DONE"
	case EvtFrameDiscarded:
		return "FRAME_DISCARD"
	case EvtPositionQuery:
		return "POS_QUERY"
	}
	return "UNKNOWN"
}

// DumpTimingRing outputs the timing ring buffer
func DumpTimingRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TIMING] === Timing Ring Dump ===")
	for _, evt := range TimingEvents() {
		debugPrintln("[TIMING] " + eventName(evt.EventType) +
			" arg=" + strconv.Itoa(int(evt.Arg)) +
			" clock=" + strconv.FormatUint(uint64(evt.Clock), 10) +
			" v1=" + strconv.FormatUint(uint64(evt.Value1), 10) +
			" v2=" + strconv.FormatUint(uint64(evt.Value2), 10))
	}
	debugPrintln("[TIMING] === End Dump ===")
}

// ClearTimingRing clears the timing buffer
func ClearTimingRing() {
	for i := range timingRing {
		timingRing[i] = TimingEvent{}
	}
	timingRingHead = 0
}
