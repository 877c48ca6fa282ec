package core

import (
	"errors"

	"cableplot/protocol"
)

// OutputBackend selects how a target drives the coil pins
type OutputBackend string

const (
	BackendSIO  OutputBackend = "sio"  // Single-cycle IO set/clear registers
	BackendPIO  OutputBackend = "pio"  // PIO state machine owning a pin window
	BackendGPIO OutputBackend = "gpio" // Per-pin driver calls
)

// RigConfig is the controller-side configuration of one plotter
type RigConfig struct {
	Motors         [protocol.MotorCount]MotorConfig
	TickUs         uint32 // Dispatch period; must match the host's plan
	MaxStreamLen   int
	FrameTimeoutUs uint32 // Partial upload idle timeout; zero disables it
	Framing        protocol.Framing
	Backend        OutputBackend
	Baud           uint32
}

var ErrRigConfig = errors.New("invalid rig configuration")

// DefaultRig returns the wiring of the reference build
func DefaultRig() RigConfig {
	return RigConfig{
		Motors: [protocol.MotorCount]MotorConfig{
			{Pins: [4]GPIOPin{20, 17, 18, 19}, Enable: 16, Invert: true, Position: 6503},
			{Pins: [4]GPIOPin{11, 13, 12, 14}, Enable: 15, Position: 0},
			{Pins: [4]GPIOPin{10, 7, 9, 21}, Enable: 8, Position: 3826},
			{Pins: [4]GPIOPin{2, 3, 4, 6}, Enable: 5, Position: 5980},
		},
		TickUs:         2000,
		MaxStreamLen:   protocol.MaxStreamLen,
		FrameTimeoutUs: 250000,
		Framing:        protocol.FramingReserved,
		Backend:        BackendSIO,
		Baud:           115200,
	}
}

// Validate checks the parts of the rig that the motors do not check
// themselves: pins shared between motors, tick period and stream size.
func (r RigConfig) Validate() error {
	if r.TickUs == 0 {
		return ErrTickPeriod
	}
	if r.MaxStreamLen <= 0 || r.MaxStreamLen > protocol.MaxStreamLen {
		return ErrRigConfig
	}
	var used uint32
	for _, m := range r.Motors {
		for _, pin := range append(m.Pins[:], m.Enable) {
			if pin >= PortWidth {
				return ErrPinRange
			}
			if used&PinMask(pin) != 0 {
				return ErrPinConflict
			}
			used |= PinMask(pin)
		}
	}
	return nil
}

// PinWindow returns the lowest pin and the span covering every motor pin
func (r RigConfig) PinWindow() (base GPIOPin, count int) {
	lo, hi := GPIOPin(PortWidth), GPIOPin(0)
	for _, m := range r.Motors {
		for _, pin := range append(m.Pins[:], m.Enable) {
			if pin < lo {
				lo = pin
			}
			if pin > hi {
				hi = pin
			}
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, int(hi-lo) + 1
}
