//go:build tinygo

package core

import "runtime/interrupt"

// State is the saved interrupt state
type State = interrupt.State

// enterCritical masks interrupts and returns the previous state
func enterCritical() State {
	return interrupt.Disable()
}

// exitCritical restores the interrupt state
func exitCritical(state State) {
	interrupt.Restore(state)
}
