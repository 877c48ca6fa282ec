package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrMarkerCollision = errors.New("command stream contains the end-of-move marker")
	ErrUnknownFraming  = errors.New("unknown framing")
	ErrEmptyStream     = errors.New("empty command stream")
	ErrStreamTooLong   = errors.New("command stream exceeds controller buffer")
)

// Framing names the three single-byte markers of the link. Markers are
// recognized by their position in the byte stream: while a move is being
// collected only End is special, while idle only Start and Query are.
type Framing struct {
	Name  string
	Start byte // Begins a command stream
	End   byte // Terminates a command stream and starts dispatch
	Query byte // Requests a position report
}

var (
	// FramingClassic is the original marker set. 'E' (0x45) and 'R' (0x52)
	// are also valid command bytes.
	FramingClassic = Framing{Name: "classic", Start: 'S', End: 'E', Query: 'R'}

	// FramingReserved uses markers whose motor-0 field holds the reserved
	// value 3, so no precalculated command can ever equal a marker.
	FramingReserved = Framing{Name: "reserved", Start: 'S', End: 'G', Query: '?'}
)

// FramingByName resolves a framing profile from configuration
func FramingByName(name string) (Framing, error) {
	switch name {
	case "", FramingReserved.Name:
		return FramingReserved, nil
	case FramingClassic.Name:
		return FramingClassic, nil
	}
	return Framing{}, fmt.Errorf("%w: %q", ErrUnknownFraming, name)
}

// Reserved reports whether every marker lies outside the valid command space
func (f Framing) Reserved() bool {
	return !CommandByte(f.Start).Valid() && !CommandByte(f.End).Valid() && !CommandByte(f.Query).Valid()
}

// Validate checks that a stream can be carried intact by this framing
func (f Framing) Validate(stream []CommandByte) error {
	if len(stream) == 0 {
		return ErrEmptyStream
	}
	if len(stream) > MaxStreamLen {
		return fmt.Errorf("%w: %d > %d", ErrStreamTooLong, len(stream), MaxStreamLen)
	}
	for i, c := range stream {
		if byte(c) == f.End {
			return fmt.Errorf("%w: byte 0x%02X at tick %d (%s framing)", ErrMarkerCollision, f.End, i, f.Name)
		}
	}
	return nil
}

// EncodeUpload frames a command stream for transmission
func (f Framing) EncodeUpload(stream []CommandByte) ([]byte, error) {
	if err := f.Validate(stream); err != nil {
		return nil, err
	}
	frame := make([]byte, 0, len(stream)+2)
	frame = append(frame, f.Start)
	for _, c := range stream {
		frame = append(frame, byte(c))
	}
	return append(frame, f.End), nil
}
