package protocol

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var (
	ErrQueryTimeout = errors.New("position query timed out")
	ErrLinkClosed   = errors.New("link closed")
)

// Link is the host side of the controller link. It uploads framed moves and
// performs position queries, one exchange at a time.
type Link struct {
	port    io.ReadWriteCloser
	framing Framing

	// Bytes read but not yet split into lines
	inputBuffer *FifoBuffer
	lineChan    chan string

	// Serializes request/response exchanges
	exchange   sync.Mutex
	writeMutex sync.Mutex
	readMutex  sync.Mutex

	stopChan  chan struct{}
	doneChan  chan struct{}
	closeOnce sync.Once
}

// NewLink wraps an open port and starts the background reader
func NewLink(port io.ReadWriteCloser, framing Framing) *Link {
	l := &Link{
		port:        port,
		framing:     framing,
		inputBuffer: NewFifoBuffer(4 * MaxReportLen),
		lineChan:    make(chan string, 4),
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}

	go l.readLoop()

	return l
}

// Framing returns the marker set used on this link
func (l *Link) Framing() Framing {
	return l.framing
}

// Upload frames and transmits a complete command stream. It returns once
// the bytes are written; the controller runs the move on its own.
func (l *Link) Upload(stream []CommandByte) error {
	frame, err := l.framing.EncodeUpload(stream)
	if err != nil {
		return err
	}

	l.exchange.Lock()
	defer l.exchange.Unlock()

	if err := l.write(frame); err != nil {
		return fmt.Errorf("failed to write move: %w", err)
	}
	return nil
}

// QueryPositions requests and waits for one position report
func (l *Link) QueryPositions(timeout time.Duration) (Positions, error) {
	l.exchange.Lock()
	defer l.exchange.Unlock()

	l.drainLines()

	if err := l.write([]byte{l.framing.Query}); err != nil {
		return Positions{}, fmt.Errorf("failed to write query: %w", err)
	}

	select {
	case line := <-l.lineChan:
		return ParsePositions(line)

	case <-time.After(timeout):
		return Positions{}, fmt.Errorf("%w after %v", ErrQueryTimeout, timeout)

	case <-l.stopChan:
		return Positions{}, ErrLinkClosed
	}
}

// Close stops the reader and releases the port
func (l *Link) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.stopChan)
		// Closing the port unblocks a pending Read
		err = l.port.Close()
		<-l.doneChan
	})
	return err
}

// write sends all of data, retrying short writes
func (l *Link) write(data []byte) error {
	l.writeMutex.Lock()
	defer l.writeMutex.Unlock()

	select {
	case <-l.stopChan:
		return ErrLinkClosed
	default:
	}

	for written := 0; written < len(data); {
		n, err := l.port.Write(data[written:])
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("incomplete write: %d/%d bytes", written, len(data))
		}
		written += n
	}
	return nil
}

// readLoop continuously reads from the port and splits report lines
func (l *Link) readLoop() {
	defer close(l.doneChan)

	buffer := make([]byte, 64)

	for {
		select {
		case <-l.stopChan:
			return
		default:
		}

		n, err := l.port.Read(buffer)
		if n > 0 {
			l.processLines(buffer[:n])
		}
		if err != nil {
			select {
			case <-l.stopChan:
				return
			default:
			}
			// Serial read timeouts surface as io.EOF; keep polling
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// processLines appends data to the input buffer and publishes full lines
func (l *Link) processLines(data []byte) {
	l.readMutex.Lock()
	defer l.readMutex.Unlock()

	for len(data) > 0 {
		written := l.inputBuffer.Write(data)
		data = data[written:]

		for {
			idx := l.inputBuffer.IndexByte('\n')
			if idx < 0 {
				break
			}
			line := make([]byte, idx)
			l.inputBuffer.Read(line)
			l.inputBuffer.Pop(1)
			l.publish(strings.TrimSpace(string(line)))
		}

		// A full buffer with no newline is garbage
		if l.inputBuffer.Free() == 0 {
			l.inputBuffer.Reset()
		}
	}
}

// publish hands a line to a waiting query, dropping the oldest on overflow
func (l *Link) publish(line string) {
	if line == "" {
		return
	}
	select {
	case l.lineChan <- line:
	default:
		select {
		case <-l.lineChan:
		default:
		}
		l.lineChan <- line
	}
}

// drainLines discards stale reports from earlier, timed-out queries
func (l *Link) drainLines() {
	for {
		select {
		case <-l.lineChan:
		default:
			return
		}
	}
}
