package core

import (
	"errors"
	"sync"
)

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// PortWidth is the number of pins one OutputPort can address
const PortWidth = 32

var (
	ErrPinRange    = errors.New("pin outside output port")
	ErrPinConflict = errors.New("pin assigned twice")
)

// OutputPort is a fixed-width bank of output pins updated with bitmasks.
// Set and Clear must each be a single bulk update, since they are called
// from the dispatch tick.
type OutputPort interface {
	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin GPIOPin) error

	// Set drives every pin in mask high
	Set(mask uint32)

	// Clear drives every pin in mask low
	Clear(mask uint32)
}

// Applier is implemented by ports that can set and clear in one update
type Applier interface {
	Apply(set, clear uint32)
}

// PinMask returns the port bit for a pin
func PinMask(pin GPIOPin) uint32 {
	return 1 << (pin % PortWidth)
}

// GPIODriver is the per-pin interface a target may offer instead of a
// register-level port.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error
}

// PinPort adapts a GPIODriver into an OutputPort with one call per pin.
// It is the portability fallback; it is several times slower than a
// register port and a pattern change is not applied atomically.
type PinPort struct {
	driver GPIODriver
}

// NewPinPort wraps a per-pin driver
func NewPinPort(driver GPIODriver) *PinPort {
	return &PinPort{driver: driver}
}

func (p *PinPort) ConfigureOutput(pin GPIOPin) error {
	if pin >= PortWidth {
		return ErrPinRange
	}
	return p.driver.ConfigureOutput(pin)
}

func (p *PinPort) Set(mask uint32) {
	p.write(mask, true)
}

func (p *PinPort) Clear(mask uint32) {
	p.write(mask, false)
}

func (p *PinPort) write(mask uint32, value bool) {
	for pin := GPIOPin(0); mask != 0; pin++ {
		if mask&1 != 0 {
			_ = p.driver.SetPin(pin, value)
		}
		mask >>= 1
	}
}

// MemPort is an in-memory OutputPort used by the host-side simulator and
// by tests.
type MemPort struct {
	mu         sync.Mutex
	level      uint32
	configured uint32
	writes     int
}

// NewMemPort creates a port with every pin low
func NewMemPort() *MemPort {
	return &MemPort{}
}

func (m *MemPort) ConfigureOutput(pin GPIOPin) error {
	if pin >= PortWidth {
		return ErrPinRange
	}
	m.mu.Lock()
	m.configured |= PinMask(pin)
	m.mu.Unlock()
	return nil
}

func (m *MemPort) Set(mask uint32) {
	m.Apply(mask, 0)
}

func (m *MemPort) Clear(mask uint32) {
	m.Apply(0, mask)
}

func (m *MemPort) Apply(set, clear uint32) {
	m.mu.Lock()
	m.level = (m.level | set) &^ clear
	m.writes++
	m.mu.Unlock()
}

// Level returns the current state of all pins
func (m *MemPort) Level() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// Pin returns the state of one pin
func (m *MemPort) Pin(pin GPIOPin) bool {
	return m.Level()&PinMask(pin) != 0
}

// Configured reports whether a pin was configured as an output
func (m *MemPort) Configured(pin GPIOPin) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configured&PinMask(pin) != 0
}

// Writes returns the number of bulk updates applied
func (m *MemPort) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
