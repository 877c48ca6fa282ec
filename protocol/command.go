package protocol

// Action is what one motor does during one tick
type Action uint8

const (
	Hold     Action = 0 // Leave the motor where it is
	Forward  Action = 1 // One step in the positive direction
	Backward Action = 2 // One step in the negative direction
	reserved Action = 3 // Never emitted; decodes as Hold
)

// CommandByte packs one Action per motor, motor i in bits 2i..2i+1
type CommandByte byte

// ActionFor returns the action that moves a position by delta (-1, 0 or +1)
func ActionFor(delta int) Action {
	switch {
	case delta > 0:
		return Forward
	case delta < 0:
		return Backward
	}
	return Hold
}

// Delta returns the signed step for an action
func (a Action) Delta() int {
	switch a {
	case Forward:
		return 1
	case Backward:
		return -1
	}
	return 0
}

func (a Action) String() string {
	switch a {
	case Hold:
		return "hold"
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	}
	return "reserved"
}

// EncodeCommand packs four actions into one byte. Values outside
// Hold/Forward/Backward are encoded as Hold.
func EncodeCommand(actions [MotorCount]Action) CommandByte {
	var c CommandByte
	for i, a := range actions {
		if a >= reserved {
			a = Hold
		}
		c |= CommandByte(a) << (uint(i) * FieldBits)
	}
	return c
}

// Field returns the raw 2-bit field for motor i
func (c CommandByte) Field(i int) uint8 {
	return uint8(c>>(uint(i)*FieldBits)) & FieldMask
}

// Action returns the decoded action for motor i; a reserved field is Hold
func (c CommandByte) Action(i int) Action {
	a := Action(c.Field(i))
	if a == reserved {
		return Hold
	}
	return a
}

// Decode unpacks all four motor actions
func (c CommandByte) Decode() [MotorCount]Action {
	var actions [MotorCount]Action
	for i := range actions {
		actions[i] = c.Action(i)
	}
	return actions
}

// Valid reports whether no field holds the reserved value 3
func (c CommandByte) Valid() bool {
	for i := 0; i < MotorCount; i++ {
		if c.Field(i) == uint8(reserved) {
			return false
		}
	}
	return true
}
