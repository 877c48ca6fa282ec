//go:build rp2040 || rp2350

package pio

var (
	// RP2040/RP2350 has 2 PIO blocks (PIO0, PIO1) with 4 state machines each
	pioAllocations = [2][4]bool{} // [pioNum][smNum]
)

// allocatePIO allocates the first free PIO state machine
func allocatePIO() (uint8, uint8, bool) {
	for pioNum := uint8(0); pioNum < 2; pioNum++ {
		for smNum := uint8(0); smNum < 4; smNum++ {
			if !pioAllocations[pioNum][smNum] {
				pioAllocations[pioNum][smNum] = true
				return pioNum, smNum, true
			}
		}
	}
	return 0, 0, false
}

func releasePIO(pioNum, smNum uint8) {
	pioAllocations[pioNum][smNum] = false
}

// GetPIOAllocationStatus returns PIO allocation status for debugging
func GetPIOAllocationStatus() [2][4]bool {
	return pioAllocations
}
