package protocol

// MoveHandler receives a complete command stream. Returning nil transfers
// ownership of the slice to the handler; on error the receiver reuses it.
type MoveHandler func(stream []CommandByte) error

// QueryHandler is called when a position query marker arrives while idle
type QueryHandler func()

// DiscardReason explains why a partial stream was dropped
type DiscardReason uint8

const (
	DiscardTimeout  DiscardReason = iota + 1 // End marker never arrived
	DiscardOverflow                          // Stream exceeded the buffer
	DiscardRejected                          // Move handler refused the stream
)

func (r DiscardReason) String() string {
	switch r {
	case DiscardTimeout:
		return "timeout"
	case DiscardOverflow:
		return "overflow"
	case DiscardRejected:
		return "rejected"
	}
	return "unknown"
}

// ReceiverState is the framing state of the controller side of the link
type ReceiverState uint8

const (
	ReceiverIdle       ReceiverState = iota // Waiting for Start or Query
	ReceiverCollecting                      // Accumulating command bytes
	ReceiverDiscarding                      // Dropping bytes until End
)

// Receiver assembles framed uploads on the controller. It runs entirely in
// the main loop; a stream is only handed to the dispatcher once its End
// marker has been seen, and the receiver never touches it afterwards.
type Receiver struct {
	framing Framing
	state   ReceiverState
	buf     []CommandByte
	maxLen  int

	// Idle timeout in clock ticks; zero disables it
	idleTimeout uint32
	lastByte    uint32

	onMove    MoveHandler
	onQuery   QueryHandler
	onDiscard func(reason DiscardReason, dropped int)
}

// NewReceiver creates a receiver accepting streams of at most maxLen bytes
func NewReceiver(framing Framing, maxLen int, onMove MoveHandler, onQuery QueryHandler) *Receiver {
	if maxLen <= 0 || maxLen > MaxStreamLen {
		maxLen = MaxStreamLen
	}
	return &Receiver{
		framing: framing,
		maxLen:  maxLen,
		onMove:  onMove,
		onQuery: onQuery,
	}
}

// SetIdleTimeout sets how long a partial stream may go without a byte
func (r *Receiver) SetIdleTimeout(ticks uint32) {
	r.idleTimeout = ticks
}

// SetDiscardCallback sets a callback invoked whenever a stream is dropped
func (r *Receiver) SetDiscardCallback(callback func(reason DiscardReason, dropped int)) {
	r.onDiscard = callback
}

// State returns the current framing state
func (r *Receiver) State() ReceiverState {
	return r.state
}

// Pending returns the number of command bytes collected so far
func (r *Receiver) Pending() int {
	return len(r.buf)
}

// Receive consumes all available input. now is the current clock value
// used for the idle timeout.
func (r *Receiver) Receive(input InputBuffer, now uint32) {
	data := input.Data()
	if len(data) == 0 {
		return
	}
	r.Expire(now)

	for _, b := range data {
		switch r.state {
		case ReceiverIdle:
			switch b {
			case r.framing.Start:
				r.begin()
			case r.framing.Query:
				if r.onQuery != nil {
					r.onQuery()
				}
			}
			// Anything else between frames is line noise

		case ReceiverCollecting:
			if b == r.framing.End {
				r.finish()
				continue
			}
			if len(r.buf) >= r.maxLen {
				dropped := len(r.buf) + 1
				r.buf = r.buf[:0]
				r.state = ReceiverDiscarding
				r.discarded(DiscardOverflow, dropped)
				continue
			}
			r.buf = append(r.buf, CommandByte(b))

		case ReceiverDiscarding:
			if b == r.framing.End {
				r.state = ReceiverIdle
			}
		}
	}
	r.lastByte = now

	input.Pop(len(data))
}

// Expire drops a partial stream whose sender has gone quiet
func (r *Receiver) Expire(now uint32) {
	if r.idleTimeout == 0 || r.state == ReceiverIdle {
		return
	}
	if now-r.lastByte < r.idleTimeout {
		return
	}
	if r.state == ReceiverCollecting {
		r.discarded(DiscardTimeout, len(r.buf))
		r.buf = r.buf[:0]
	}
	r.state = ReceiverIdle
}

func (r *Receiver) begin() {
	if r.buf == nil {
		size := 1024
		if size > r.maxLen {
			size = r.maxLen
		}
		r.buf = make([]CommandByte, 0, size)
	}
	r.buf = r.buf[:0]
	r.state = ReceiverCollecting
}

func (r *Receiver) finish() {
	r.state = ReceiverIdle
	stream := r.buf
	if len(stream) == 0 {
		return
	}
	if r.onMove == nil {
		r.buf = stream[:0]
		return
	}
	if err := r.onMove(stream); err != nil {
		r.buf = stream[:0]
		r.discarded(DiscardRejected, len(stream))
		return
	}
	// Ownership moved to the handler
	r.buf = nil
}

func (r *Receiver) discarded(reason DiscardReason, n int) {
	if r.onDiscard != nil {
		r.onDiscard(reason, n)
	}
}
