package core

// Four-phase drive for a bipolar stepper through an H-bridge. Each motor
// has four coil pins and an enable pin for the bridge power stage.

// PhaseCount is the length of the winding sequence
const PhaseCount = 4

// PowerPattern lists which of the four coil pins are energized per phase
var PowerPattern = [PhaseCount][4]bool{
	{true, false, true, false},
	{false, true, true, false},
	{false, true, false, true},
	{true, false, false, true},
}

// PhaseIndex returns the winding phase for an absolute position,
// (5 - position) mod 4, always in 0..3.
func PhaseIndex(position int64) int {
	return int((5 - position) & (PhaseCount - 1))
}

// MotorConfig describes one spool motor
type MotorConfig struct {
	Pins     [4]GPIOPin // Coil pins in PowerPattern column order
	Enable   GPIOPin    // H-bridge enable
	Invert   bool       // Motor is mounted mirrored
	Position int64      // Absolute position at startup
}

// MotorState is a snapshot of one motor
type MotorState struct {
	Position  int64
	Direction int8
	Enabled   bool
}

// Motor drives one stepper. Position is the logical cable length in steps;
// a mirrored motor walks the phase table backwards for the same position
// change.
type Motor struct {
	port    OutputPort
	applier Applier

	invert    bool
	position  int64
	direction int8
	enabled   bool

	// Precomputed for the tick path
	coilMask   uint32
	enableMask uint32
	phaseMasks [PhaseCount]uint32
}

// NewMotor configures the pins of one motor and leaves it disabled
func NewMotor(port OutputPort, cfg MotorConfig) (*Motor, error) {
	var used uint32
	pins := append(cfg.Pins[:], cfg.Enable)
	for _, pin := range pins {
		if pin >= PortWidth {
			return nil, ErrPinRange
		}
		if used&PinMask(pin) != 0 {
			return nil, ErrPinConflict
		}
		used |= PinMask(pin)
	}
	for _, pin := range pins {
		if err := port.ConfigureOutput(pin); err != nil {
			return nil, err
		}
	}

	m := &Motor{
		port:       port,
		invert:     cfg.Invert,
		position:   cfg.Position,
		direction:  1,
		enableMask: PinMask(cfg.Enable),
	}
	if a, ok := port.(Applier); ok {
		m.applier = a
	}

	for _, pin := range cfg.Pins {
		m.coilMask |= PinMask(pin)
	}
	for phase, pattern := range PowerPattern {
		for i, on := range pattern {
			if on {
				m.phaseMasks[phase] |= PinMask(cfg.Pins[i])
			}
		}
	}

	port.Clear(m.enableMask)
	return m, nil
}

// SetDirection stores the direction for subsequent steps. Any negative
// value means backward, anything else forward; a mirrored motor stores the
// opposite.
func (m *Motor) SetDirection(direction int8) {
	d := int8(1)
	if direction < 0 {
		d = -1
	}
	if m.invert {
		d = -d
	}
	m.direction = d
}

// Step moves one step in the stored direction and writes the new phase
// pattern to the coil pins in one update.
func (m *Motor) Step() {
	d := int64(m.direction)
	if m.invert {
		d = -d
	}
	m.position += d

	phase := m.position
	if m.invert {
		phase = -phase
	}
	set := m.phaseMasks[PhaseIndex(phase)]
	clear := m.coilMask &^ set

	if m.applier != nil {
		m.applier.Apply(set, clear)
		return
	}
	m.port.Set(set)
	m.port.Clear(clear)
}

// Enable powers the H-bridge
func (m *Motor) Enable() {
	m.port.Set(m.enableMask)
	m.enabled = true
}

// Disable removes bridge power so an idle motor does not heat up
func (m *Motor) Disable() {
	m.port.Clear(m.enableMask)
	m.enabled = false
}

// Position returns the absolute position in steps
func (m *Motor) Position() int64 {
	return m.position
}

// State returns a snapshot of the motor
func (m *Motor) State() MotorState {
	return MotorState{
		Position:  m.position,
		Direction: m.direction,
		Enabled:   m.enabled,
	}
}
