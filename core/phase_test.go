package core

import (
	"errors"
	"testing"
)

func TestPhaseIndex(t *testing.T) {
	tests := []struct {
		position int64
		want     int
	}{
		{0, 1}, {1, 0}, {2, 3}, {3, 2}, {4, 1},
		{-1, 2}, {-2, 3}, {-3, 0}, {-4, 1},
		{6503, 2}, {-6503, 0},
	}
	for _, tt := range tests {
		if got := PhaseIndex(tt.position); got != tt.want {
			t.Errorf("PhaseIndex(%d) = %d, expected %d", tt.position, got, tt.want)
		}
	}
}

func TestPhaseIndexPeriod(t *testing.T) {
	seen := make(map[int]bool)
	for pos := int64(0); pos < 4; pos++ {
		seen[PhaseIndex(pos)] = true
	}
	if len(seen) != PhaseCount {
		t.Errorf("Expected four distinct phases in one cycle, got %d", len(seen))
	}
	for pos := int64(-20); pos < 20; pos++ {
		if PhaseIndex(pos) != PhaseIndex(pos+4) {
			t.Errorf("Phase at %d differs from phase at %d", pos, pos+4)
		}
	}
}

func testMotorConfig() MotorConfig {
	return MotorConfig{Pins: [4]GPIOPin{0, 1, 2, 3}, Enable: 4}
}

func coils(port *MemPort) uint32 {
	return port.Level() & 0x0f
}

func TestMotorStep(t *testing.T) {
	port := NewMemPort()
	m, err := NewMotor(port, testMotorConfig())
	if err != nil {
		t.Fatalf("NewMotor failed: %v", err)
	}

	for pin := GPIOPin(0); pin <= 4; pin++ {
		if !port.Configured(pin) {
			t.Errorf("Pin %d not configured", pin)
		}
	}
	if m.State().Enabled || port.Pin(4) {
		t.Error("Expected motor to start disabled")
	}

	// Forward from 0: phase 0 then phase 3
	m.SetDirection(1)
	m.Step()
	if m.Position() != 1 || coils(port) != 0b0101 {
		t.Errorf("After step 1: position %d coils %04b", m.Position(), coils(port))
	}
	m.Step()
	if m.Position() != 2 || coils(port) != 0b1001 {
		t.Errorf("After step 2: position %d coils %04b", m.Position(), coils(port))
	}

	m.SetDirection(-1)
	m.Step()
	if m.Position() != 1 || coils(port) != 0b0101 {
		t.Errorf("After step back: position %d coils %04b", m.Position(), coils(port))
	}

	// Four steps return to the same pattern
	before := coils(port)
	m.SetDirection(1)
	for i := 0; i < 4; i++ {
		m.Step()
	}
	if coils(port) != before {
		t.Errorf("Expected pattern %04b after a full cycle, got %04b", before, coils(port))
	}

	// Exactly two coils are energized in every phase
	for i := 0; i < 8; i++ {
		m.Step()
		n := 0
		for c := coils(port); c != 0; c &= c - 1 {
			n++
		}
		if n != 2 {
			t.Errorf("Expected two energized coils, got %04b", coils(port))
		}
	}
}

func TestMotorInvert(t *testing.T) {
	port := NewMemPort()
	cfg := testMotorConfig()
	cfg.Invert = true
	m, err := NewMotor(port, cfg)
	if err != nil {
		t.Fatal(err)
	}

	m.SetDirection(1)
	if m.State().Direction != -1 {
		t.Errorf("Expected stored direction -1, got %d", m.State().Direction)
	}
	m.Step()
	if m.Position() != 1 {
		t.Errorf("Expected position 1, got %d", m.Position())
	}
	// Mirrored motor walks the table backwards: phase of -1
	if coils(port) != 0b1010 {
		t.Errorf("Expected coils 1010, got %04b", coils(port))
	}

	// Same position on a normal motor selects the mirrored pattern
	normalPort := NewMemPort()
	n, _ := NewMotor(normalPort, testMotorConfig())
	n.SetDirection(-1)
	n.Step()
	if coils(normalPort) != coils(port) {
		t.Errorf("Expected normal motor at -1 to match inverted at 1: %04b vs %04b", coils(normalPort), coils(port))
	}
}

func TestMotorEnable(t *testing.T) {
	port := NewMemPort()
	m, _ := NewMotor(port, testMotorConfig())

	m.Enable()
	if !port.Pin(4) || !m.State().Enabled {
		t.Error("Expected enable pin high")
	}
	m.Disable()
	if port.Pin(4) || m.State().Enabled {
		t.Error("Expected enable pin low")
	}
}

func TestMotorConfigErrors(t *testing.T) {
	cfg := testMotorConfig()
	cfg.Pins[2] = 32
	if _, err := NewMotor(NewMemPort(), cfg); !errors.Is(err, ErrPinRange) {
		t.Errorf("Expected ErrPinRange, got %v", err)
	}

	cfg = testMotorConfig()
	cfg.Enable = 1
	if _, err := NewMotor(NewMemPort(), cfg); !errors.Is(err, ErrPinConflict) {
		t.Errorf("Expected ErrPinConflict, got %v", err)
	}
}
