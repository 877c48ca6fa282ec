//go:build rp2040

package main

import (
	"errors"
	"machine"

	"tinygo.org/x/drivers"

	"cableplot/protocol"
)

const inputBufferSize = 256

var errWriteStalled = errors.New("uart write made no progress")

// hostLink moves bytes between the host UART and the controller
type hostLink struct {
	uart  drivers.UART
	input *protocol.FifoBuffer
	chunk [64]byte

	// Debug counters
	bytesReceived uint32
	rxDropped     uint32
	writeFailures uint32
}

// newHostLink configures UART0 on GPIO0 (TX) and GPIO1 (RX)
func newHostLink(baud uint32) (*hostLink, error) {
	uart := machine.UART0
	err := uart.Configure(machine.UARTConfig{
		BaudRate: baud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	if err != nil {
		return nil, err
	}
	return &hostLink{
		uart:  uart,
		input: protocol.NewFifoBuffer(inputBufferSize),
	}, nil
}

// poll moves pending UART bytes into the input FIFO
func (l *hostLink) poll() int {
	n := l.uart.Buffered()
	if n == 0 {
		return 0
	}
	if n > len(l.chunk) {
		n = len(l.chunk)
	}
	if free := l.input.Free(); n > free {
		// Leave the rest in the UART ring until the receiver catches up
		n = free
		if n == 0 {
			l.rxDropped++
			return 0
		}
	}

	read, err := l.uart.Read(l.chunk[:n])
	if err != nil || read == 0 {
		return 0
	}
	l.input.Write(l.chunk[:read])
	l.bytesReceived += uint32(read)
	return read
}

// write sends a reply, handling partial writes
func (l *hostLink) write(data []byte) error {
	written := 0
	for written < len(data) {
		n, err := l.uart.Write(data[written:])
		if err != nil {
			l.writeFailures++
			return err
		}
		if n == 0 {
			l.writeFailures++
			return errWriteStalled
		}
		written += n
	}
	return nil
}
