//go:build rp2040

package main

import (
	"device/rp"
	"machine"

	"cableplot/core"
)

// numGPIO is the number of user GPIOs on the RP2040
const numGPIO = 30

// SIOPort drives pins through the single-cycle IO block. Set and Clear
// are the write-only GPIO_OUT_SET and GPIO_OUT_CLR registers; Apply
// writes GPIO_OUT once so every coil changes on the same cycle.
type SIOPort struct{}

func NewSIOPort() *SIOPort {
	return &SIOPort{}
}

func (p *SIOPort) ConfigureOutput(pin core.GPIOPin) error {
	if pin >= numGPIO {
		return core.ErrPinRange
	}
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinOutput})
	rp.SIO.GPIO_OUT_CLR.Set(core.PinMask(pin))
	return nil
}

func (p *SIOPort) Set(mask uint32) {
	rp.SIO.GPIO_OUT_SET.Set(mask)
}

func (p *SIOPort) Clear(mask uint32) {
	rp.SIO.GPIO_OUT_CLR.Set(mask)
}

// Apply must run with interrupts masked; the dispatcher tick does
func (p *SIOPort) Apply(set, clear uint32) {
	out := rp.SIO.GPIO_OUT.Get()
	rp.SIO.GPIO_OUT.Set((out | set) &^ clear)
}
