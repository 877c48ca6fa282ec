//go:build rp2040 || rp2350

package pio

// PIO output port. One state machine owns a consecutive window of GPIOs
// and copies each word from its TX FIFO onto them, so a whole coil
// pattern lands on the pins in a single cycle.

import (
	"errors"
	"machine"

	"cableplot/core"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// windowBits is the width of one OUT; PINCTRL limits which pins it reaches
const windowBits = 30

var (
	ErrWindowTooWide  = errors.New("pin window wider than one PIO OUT")
	ErrNoStateMachine = errors.New("no free PIO state machine")
)

// buildWindowProgram creates the port PIO program using AssemblerV0
func buildWindowProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),                   // 0: pull block
		asm.Out(rp2pio.OutDestPins, windowBits).Encode(), // 1: out pins, 30
		// .wrap
	}
}

// WindowPort implements core.OutputPort and core.Applier on a PIO state
// machine driving pins base..base+count-1.
type WindowPort struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	base   machine.Pin
	count  uint8
	window uint32 // mask of the window in port bit positions
	level  uint32 // shadow of the pin levels, in port bit positions
}

// NewWindowPort claims a state machine and starts it on the pin window
func NewWindowPort(base core.GPIOPin, count int) (*WindowPort, error) {
	if count <= 0 || count > windowBits || int(base)+count > core.PortWidth {
		return nil, ErrWindowTooWide
	}

	pioNum, smNum, ok := allocatePIO()
	if !ok {
		return nil, ErrNoStateMachine
	}
	pioHW := rp2pio.PIO0
	if pioNum == 1 {
		pioHW = rp2pio.PIO1
	}

	p := &WindowPort{
		pio:    pioHW,
		sm:     pioHW.StateMachine(smNum),
		base:   machine.Pin(base),
		count:  uint8(count),
		window: (uint32(1)<<uint(count) - 1) << uint(base),
	}

	p.sm.TryClaim()

	program := buildWindowProgram()
	offset, err := p.pio.AddProgram(program, -1)
	if err != nil {
		releasePIO(pioNum, smNum)
		return nil, err
	}

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetOutPins(p.base, p.count)
	// Shift right so bit 0 lands on the base pin; explicit PULL
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(1, 0)

	p.sm.Init(offset, cfg)
	p.sm.SetPinsConsecutive(p.base, p.count, false)
	p.sm.SetEnabled(true)
	return p, nil
}

// ConfigureOutput hands a pin in the window to the PIO block
func (p *WindowPort) ConfigureOutput(pin core.GPIOPin) error {
	if pin >= core.PortWidth || core.PinMask(pin)&p.window == 0 {
		return core.ErrPinRange
	}
	machine.Pin(pin).Configure(machine.PinConfig{Mode: p.pio.PinMode()})
	p.sm.SetPindirsConsecutive(machine.Pin(pin), 1, true)
	return nil
}

func (p *WindowPort) Set(mask uint32) {
	p.Apply(mask, 0)
}

func (p *WindowPort) Clear(mask uint32) {
	p.Apply(0, mask)
}

// Apply updates the shadow level and queues it as one FIFO word
func (p *WindowPort) Apply(set, clear uint32) {
	p.level = (p.level | set) &^ clear
	word := (p.level & p.window) >> uint(p.base)

	for p.sm.IsTxFIFOFull() {
		// Drains one word per two PIO cycles
	}
	p.sm.TxPut(word)
}
