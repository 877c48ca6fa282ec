//go:build rp2040

package main

import (
	"machine"
	"strconv"

	"cableplot/core"
)

var (
	consoleEnabled bool
)

// InitDebugConsole routes core debug output to the USB CDC console. The
// host link owns UART0, so diagnostics never share the wire with
// command bytes.
func InitDebugConsole() {
	err := machine.Serial.Configure(machine.UARTConfig{})
	if err != nil {
		return
	}
	consoleEnabled = true

	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s))
		machine.Serial.Write([]byte("\r\n"))
	})
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()
}

// pollConsole handles single-key requests typed on the USB console:
// 't' dumps the timing ring, 's' prints a status line, 'c' clears the ring,
// 'd' toggles debug output.
func pollConsole(ctrl *core.Controller, link *hostLink) {
	if !consoleEnabled || machine.Serial.Buffered() == 0 {
		return
	}
	key, err := machine.Serial.ReadByte()
	if err != nil {
		return
	}

	switch key {
	case 't':
		core.DumpTimingRing()
	case 'c':
		core.ClearTimingRing()
	case 'd':
		core.SetDebugEnabled(!core.IsDebugEnabled())
		machine.Serial.Write([]byte("debug toggled\r\n"))
	case 's':
		d := ctrl.Dispatcher()
		executed, total := d.Progress()
		core.DebugPrintln("[STATUS] up=" + strconv.FormatUint(GetHardwareUptime()/1000000, 10) + "s" +
			" state=" + d.State().String() +
			" progress=" + strconv.Itoa(executed) + "/" + strconv.Itoa(total) +
			" late=" + strconv.FormatUint(uint64(d.LateTicks()), 10) +
			" pos=" + ctrl.Positions().String() +
			" rx=" + strconv.FormatUint(uint64(link.bytesReceived), 10) +
			" rxdrop=" + strconv.FormatUint(uint64(link.rxDropped), 10) +
			" txfail=" + strconv.FormatUint(uint64(link.writeFailures), 10))
	}
}
