//go:build rp2040

package main

// Phase walk bench test - steps each motor of the rig back and forth at
// a range of rates through the PIO window port.
// Watch the coils (or a logic analyser on GP2..GP21) to check wiring.

import (
	"machine"
	"time"

	"cableplot/core"
	"cableplot/targets/pio"
)

// Step rates to cycle through
var rateTests = []struct {
	period time.Duration
	name   string
}{
	{10 * time.Millisecond, "100 steps/s"},
	{4 * time.Millisecond, "250 steps/s"},
	{2 * time.Millisecond, "500 steps/s (rig limit)"},
}

const walkSteps = 200

func main() {
	time.Sleep(3 * time.Second)

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	// Flash LED to indicate start
	for i := 0; i < 3; i++ {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}

	println("=== Phase Walk Test ===")

	rig := core.DefaultRig()
	base, count := rig.PinWindow()
	port, err := pio.NewWindowPort(base, count)
	if err != nil {
		fail("port init: " + err.Error())
	}

	var motors [4]*core.Motor
	for i, cfg := range rig.Motors {
		motors[i], err = core.NewMotor(port, cfg)
		if err != nil {
			fail("motor init: " + err.Error())
		}
	}
	println("Init OK!")
	for pioNum, sms := range pio.GetPIOAllocationStatus() {
		for smNum, used := range sms {
			if used {
				println("  PIO", pioNum, "SM", smNum, "in use")
			}
		}
	}

	cycle := 0
	for {
		cycle++
		println("\n=== Cycle", cycle, "===")

		for i, m := range motors {
			for _, test := range rateTests {
				println("Motor", i+1, "-", test.name)
				led.High()
				m.Enable()
				walk(m, 1, test.period)
				walk(m, -1, test.period)
				m.Disable()
				led.Low()

				// A full walk out and back must return to the start
				println("  position:", m.Position(), "expected:", rig.Motors[i].Position)
				time.Sleep(500 * time.Millisecond)
			}
		}

		println("\n--- Restarting cycle ---")
		time.Sleep(1 * time.Second)
	}
}

func walk(m *core.Motor, direction int8, period time.Duration) {
	m.SetDirection(direction)
	for i := 0; i < walkSteps; i++ {
		m.Step()
		time.Sleep(period)
	}
}

func fail(msg string) {
	println("Init error:", msg)
	led := machine.LED
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
