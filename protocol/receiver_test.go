package protocol

import (
	"errors"
	"testing"
)

type receiverHarness struct {
	moves    [][]CommandByte
	queries  int
	discards []DiscardReason
	reject   error
}

func newHarness(framing Framing, maxLen int) (*Receiver, *receiverHarness) {
	h := &receiverHarness{}
	r := NewReceiver(framing, maxLen, func(stream []CommandByte) error {
		if h.reject != nil {
			return h.reject
		}
		h.moves = append(h.moves, stream)
		return nil
	}, func() {
		h.queries++
	})
	r.SetDiscardCallback(func(reason DiscardReason, dropped int) {
		h.discards = append(h.discards, reason)
	})
	return r, h
}

func feed(r *Receiver, now uint32, data ...byte) {
	r.Receive(NewSliceInputBuffer(data), now)
}

func TestReceiverCompleteStream(t *testing.T) {
	r, h := newHarness(FramingReserved, 0)

	feed(r, 0, 'S', 0x86, 0x55)
	if len(h.moves) != 0 {
		t.Fatal("Stream dispatched before end marker")
	}
	if r.State() != ReceiverCollecting || r.Pending() != 2 {
		t.Errorf("Expected collecting with 2 bytes, got state %d pending %d", r.State(), r.Pending())
	}

	feed(r, 10, 0x00, 'G')
	if len(h.moves) != 1 {
		t.Fatalf("Expected one stream, got %d", len(h.moves))
	}
	want := []CommandByte{0x86, 0x55, 0x00}
	if len(h.moves[0]) != len(want) {
		t.Fatalf("Stream = %v, want %v", h.moves[0], want)
	}
	for i := range want {
		if h.moves[0][i] != want[i] {
			t.Errorf("Stream[%d] = 0x%02X, want 0x%02X", i, byte(h.moves[0][i]), byte(want[i]))
		}
	}
	if r.State() != ReceiverIdle {
		t.Errorf("Expected idle after end marker, got %d", r.State())
	}
}

func TestReceiverMarkersArePositional(t *testing.T) {
	r, h := newHarness(FramingClassic, 0)

	// 'R' and 'S' inside a stream are payload
	feed(r, 0, 'S', 'R', 'S', 0x01, 'E')
	if h.queries != 0 {
		t.Errorf("Query marker inside stream triggered %d queries", h.queries)
	}
	if len(h.moves) != 1 || len(h.moves[0]) != 3 {
		t.Fatalf("Expected one 3-byte stream, got %v", h.moves)
	}

	// 'E' while idle is noise
	feed(r, 1, 'E', 0x00, 'R')
	if h.queries != 1 {
		t.Errorf("Expected one query, got %d", h.queries)
	}
	if len(h.moves) != 1 {
		t.Errorf("Noise produced a stream")
	}
}

func TestReceiverTimeoutDiscardsPartial(t *testing.T) {
	r, h := newHarness(FramingReserved, 0)
	r.SetIdleTimeout(100)

	feed(r, 1000, 'S', 0x01, 0x02)
	r.Expire(1050)
	if r.State() != ReceiverCollecting {
		t.Fatal("Stream expired before the idle timeout")
	}

	r.Expire(1100)
	if r.State() != ReceiverIdle {
		t.Fatalf("Expected idle after timeout, got %d", r.State())
	}
	if len(h.discards) != 1 || h.discards[0] != DiscardTimeout {
		t.Errorf("Expected a timeout discard, got %v", h.discards)
	}

	// A late end marker must not dispatch the stale bytes
	feed(r, 1200, 'G')
	if len(h.moves) != 0 {
		t.Errorf("Partial stream was dispatched: %v", h.moves)
	}

	// A fresh frame still works
	feed(r, 1300, 'S', 0x04, 'G')
	if len(h.moves) != 1 || len(h.moves[0]) != 1 || h.moves[0][0] != 0x04 {
		t.Errorf("Fresh stream not delivered intact: %v", h.moves)
	}
}

func TestReceiverOverflow(t *testing.T) {
	r, h := newHarness(FramingReserved, 4)

	feed(r, 0, 'S', 1, 1, 1, 1, 1, 1, 0)
	if r.State() != ReceiverDiscarding {
		t.Fatalf("Expected discarding after overflow, got %d", r.State())
	}
	if len(h.discards) != 1 || h.discards[0] != DiscardOverflow {
		t.Errorf("Expected an overflow discard, got %v", h.discards)
	}

	// Query markers are ignored until the oversized frame ends
	feed(r, 1, '?', 'G', '?')
	if h.queries != 1 {
		t.Errorf("Expected exactly one query after the frame ended, got %d", h.queries)
	}
	if len(h.moves) != 0 {
		t.Errorf("Oversized stream dispatched")
	}
}

func TestReceiverRejectedStream(t *testing.T) {
	r, h := newHarness(FramingReserved, 0)
	h.reject = errors.New("busy")

	feed(r, 0, 'S', 0x01, 'G')
	if len(h.discards) != 1 || h.discards[0] != DiscardRejected {
		t.Errorf("Expected a rejected discard, got %v", h.discards)
	}

	h.reject = nil
	feed(r, 1, 'S', 0x02, 'G')
	if len(h.moves) != 1 || h.moves[0][0] != 0x02 {
		t.Errorf("Stream after rejection not delivered: %v", h.moves)
	}
}

func TestReceiverPopsInput(t *testing.T) {
	r, _ := newHarness(FramingReserved, 0)
	in := NewSliceInputBuffer([]byte{'S', 1, 2})
	r.Receive(in, 0)
	if in.Available() != 0 {
		t.Errorf("Expected all input consumed, %d left", in.Available())
	}
}
