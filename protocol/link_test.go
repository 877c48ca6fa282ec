package protocol

import (
	"bufio"
	"errors"
	"io"
	"testing"
	"time"
)

// pipePort connects a Link to an in-process fake controller
type pipePort struct {
	io.Reader
	io.Writer
	closers []io.Closer
}

func (p *pipePort) Close() error {
	for _, c := range p.closers {
		c.Close()
	}
	return nil
}

type fakeController struct {
	rx    *bufio.Reader
	tx    io.Writer
	reply func(query int) string
	got   chan []byte
}

func newLinkPair(t *testing.T, framing Framing, reply func(query int) string) (*Link, *fakeController) {
	t.Helper()
	hostR, ctlW := io.Pipe()
	ctlR, hostW := io.Pipe()

	port := &pipePort{Reader: hostR, Writer: hostW, closers: []io.Closer{hostR, hostW}}
	fc := &fakeController{rx: bufio.NewReader(ctlR), tx: ctlW, reply: reply, got: make(chan []byte, 8)}

	go fc.serve(framing)

	link := NewLink(port, framing)
	t.Cleanup(func() {
		link.Close()
		ctlR.Close()
		ctlW.Close()
	})
	return link, fc
}

func (fc *fakeController) serve(framing Framing) {
	queries := 0
	var frame []byte
	collecting := false
	for {
		b, err := fc.rx.ReadByte()
		if err != nil {
			return
		}
		switch {
		case collecting && b == framing.End:
			collecting = false
			fc.got <- frame
		case collecting:
			frame = append(frame, b)
		case b == framing.Start:
			collecting = true
			frame = nil
		case b == framing.Query:
			queries++
			if line := fc.reply(queries); line != "" {
				io.WriteString(fc.tx, line)
			}
		}
	}
}

func TestLinkUpload(t *testing.T) {
	link, fc := newLinkPair(t, FramingReserved, func(int) string { return "" })

	stream := []CommandByte{0x86, 0x45, 0x00, 0x52}
	if err := link.Upload(stream); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	select {
	case frame := <-fc.got:
		if len(frame) != len(stream) {
			t.Fatalf("Controller got %d bytes, want %d", len(frame), len(stream))
		}
		for i := range stream {
			if frame[i] != byte(stream[i]) {
				t.Errorf("Byte %d = 0x%02X, want 0x%02X", i, frame[i], byte(stream[i]))
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Controller never received the frame")
	}
}

func TestLinkUploadCollision(t *testing.T) {
	link, _ := newLinkPair(t, FramingClassic, func(int) string { return "" })

	err := link.Upload([]CommandByte{0x00, 0x45})
	if !errors.Is(err, ErrMarkerCollision) {
		t.Errorf("Expected ErrMarkerCollision, got %v", err)
	}
}

func TestLinkQueryPositions(t *testing.T) {
	link, _ := newLinkPair(t, FramingClassic, func(q int) string {
		return "6503,0,3826,5980\n"
	})

	p, err := link.QueryPositions(time.Second)
	if err != nil {
		t.Fatalf("QueryPositions failed: %v", err)
	}
	if p != (Positions{6503, 0, 3826, 5980}) {
		t.Errorf("Positions = %v", p)
	}
}

func TestLinkQueryMalformedAndTimeout(t *testing.T) {
	link, _ := newLinkPair(t, FramingReserved, func(q int) string {
		switch q {
		case 1:
			return "12,3\n"
		case 2:
			return ""
		}
		return "1,2,3,4\n"
	})

	if _, err := link.QueryPositions(time.Second); !errors.Is(err, ErrMalformedReport) {
		t.Errorf("Expected ErrMalformedReport, got %v", err)
	}
	if _, err := link.QueryPositions(50 * time.Millisecond); !errors.Is(err, ErrQueryTimeout) {
		t.Errorf("Expected ErrQueryTimeout, got %v", err)
	}
	p, err := link.QueryPositions(time.Second)
	if err != nil || p != (Positions{1, 2, 3, 4}) {
		t.Errorf("Query after failures = %v, %v", p, err)
	}
}

func TestLinkClosed(t *testing.T) {
	link, _ := newLinkPair(t, FramingReserved, func(int) string { return "" })

	if err := link.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := link.Upload([]CommandByte{0x01}); !errors.Is(err, ErrLinkClosed) {
		t.Errorf("Upload after close: expected ErrLinkClosed, got %v", err)
	}
	// Close is idempotent
	link.Close()
}
