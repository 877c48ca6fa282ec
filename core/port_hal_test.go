package core

import (
	"testing"
)

// MockGPIODriver is a per-pin driver recording every call
type MockGPIODriver struct {
	pins  map[GPIOPin]bool
	calls int
}

func NewMockGPIODriver() *MockGPIODriver {
	return &MockGPIODriver{pins: make(map[GPIOPin]bool)}
}

func (m *MockGPIODriver) ConfigureOutput(pin GPIOPin) error {
	m.pins[pin] = false
	return nil
}

func (m *MockGPIODriver) SetPin(pin GPIOPin, value bool) error {
	m.pins[pin] = value
	m.calls++
	return nil
}

// setClearPort hides MemPort.Apply to exercise the two-write path
type setClearPort struct {
	mem *MemPort
}

func (p setClearPort) ConfigureOutput(pin GPIOPin) error { return p.mem.ConfigureOutput(pin) }
func (p setClearPort) Set(mask uint32)                   { p.mem.Set(mask) }
func (p setClearPort) Clear(mask uint32)                 { p.mem.Clear(mask) }

func TestMemPort(t *testing.T) {
	port := NewMemPort()
	port.Set(0b1011)
	port.Clear(0b0010)
	if port.Level() != 0b1001 {
		t.Errorf("Expected level 1001, got %04b", port.Level())
	}
	port.Apply(0b0110, 0b1000)
	if port.Level() != 0b0111 {
		t.Errorf("Expected level 0111, got %04b", port.Level())
	}
	if port.Writes() != 3 {
		t.Errorf("Expected 3 writes, got %d", port.Writes())
	}
	if err := port.ConfigureOutput(40); err != ErrPinRange {
		t.Errorf("Expected ErrPinRange, got %v", err)
	}
}

func TestPinPort(t *testing.T) {
	driver := NewMockGPIODriver()
	port := NewPinPort(driver)

	port.Set(PinMask(3) | PinMask(17))
	if !driver.pins[3] || !driver.pins[17] || driver.calls != 2 {
		t.Errorf("Unexpected pin state %v after Set", driver.pins)
	}
	port.Clear(PinMask(3))
	if driver.pins[3] || !driver.pins[17] {
		t.Errorf("Unexpected pin state %v after Clear", driver.pins)
	}
	if err := port.ConfigureOutput(32); err != ErrPinRange {
		t.Errorf("Expected ErrPinRange, got %v", err)
	}
}

func TestMotorBackendsAgree(t *testing.T) {
	applier := NewMemPort()
	split := setClearPort{mem: NewMemPort()}
	driver := NewMockGPIODriver()

	a, _ := NewMotor(applier, testMotorConfig())
	b, _ := NewMotor(split, testMotorConfig())
	c, err := NewMotor(NewPinPort(driver), testMotorConfig())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 7; i++ {
		a.Step()
		b.Step()
		c.Step()
		if applier.Level() != split.mem.Level() {
			t.Fatalf("Step %d: applier %04b, split %04b", i, applier.Level(), split.mem.Level())
		}
		for pin := GPIOPin(0); pin < 4; pin++ {
			if driver.pins[pin] != applier.Pin(pin) {
				t.Fatalf("Step %d: pin %d differs on per-pin port", i, pin)
			}
		}
	}
	// One bulk write per step on the applier port
	if applier.Writes() != 1+7 {
		t.Errorf("Expected 8 writes, got %d", applier.Writes())
	}
}
