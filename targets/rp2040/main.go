//go:build rp2040

package main

import (
	"machine"
	"time"

	"cableplot/core"
	"cableplot/targets/pio"
)

var (
	// Debug counters
	loopPanics uint32
)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitDebugConsole()

	rig := core.DefaultRig()
	port, err := newOutputPort(rig)
	if err != nil {
		halt("output port: " + err.Error())
	}

	ctrl, err := core.NewController(port, core.ClockFunc(GetHardwareTime), rig)
	if err != nil {
		halt("controller: " + err.Error())
	}

	link, err := newHostLink(rig.Baud)
	if err != nil {
		halt("uart: " + err.Error())
	}

	core.DebugPrintln("[BOOT] plotter controller ready, backend=" + string(rig.Backend) +
		" pos=" + ctrl.Positions().String())

	// Main loop. Dispatch ticks run from here, so nothing in the loop may
	// block for longer than a fraction of the tick period.
	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					loopPanics++
					link.input.Reset()
					ctrl.Output().Reset()
				}
			}()

			link.poll()
			ctrl.Feed(link.input)
			ctrl.Poll()

			if out := ctrl.Output().Result(); len(out) > 0 {
				if err := link.write(out); err != nil {
					core.DebugAsync("[LINK] write failed: " + err.Error())
				}
				ctrl.Output().Reset()
			}

			pollConsole(ctrl, link)
		}()

		// Yield to the debug output goroutine
		time.Sleep(10 * time.Microsecond)
	}
}

// newOutputPort builds the coil output backend selected by the rig
func newOutputPort(rig core.RigConfig) (core.OutputPort, error) {
	switch rig.Backend {
	case core.BackendPIO:
		base, count := rig.PinWindow()
		return pio.NewWindowPort(base, count)
	case core.BackendGPIO:
		return core.NewPinPort(NewRPGPIODriver()), nil
	}
	return NewSIOPort(), nil
}

// halt reports a fatal startup error on the console forever
func halt(msg string) {
	for {
		core.DebugPrintln("[FATAL] " + msg)
		time.Sleep(time.Second)
	}
}
