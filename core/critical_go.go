//go:build !tinygo

package core

// State is a placeholder for interrupt state on regular Go
type State uintptr

// enterCritical is a no-op on regular Go; host-side callers serialize
// through the Controller.
func enterCritical() State {
	return 0
}

func exitCritical(State) {}
