package kinematics

import (
	"math"

	"cableplot/protocol"
)

// Spool model calibrated on the rig: length = A*r² + B*r + C for a cable
// whose anchor is r millimeters away.
const (
	spoolA = 0.0113142
	spoolB = 16.9572
	spoolC = -663.986
)

// Corner anchor geometry in millimeters
const (
	anchorOffset = 17.0
	anchorFar    = 238.0
)

// Lengths holds one cable length in steps per motor
type Lengths = protocol.Positions

// CableLengths returns the four cable lengths for a board coordinate.
// Motors are ordered near-near, far-near, near-far, far-far in (x, y).
func CableLengths(c Coordinate) (Lengths, error) {
	x, y, err := c.MM()
	if err != nil {
		return Lengths{}, err
	}

	nearX, farX := x+anchorOffset, anchorFar-x
	nearY, farY := y+anchorOffset, anchorFar-y

	return Lengths{
		spoolSteps(nearX, nearY),
		spoolSteps(farX, nearY),
		spoolSteps(nearX, farY),
		spoolSteps(farX, farY),
	}, nil
}

// spoolSteps rounds half to even
func spoolSteps(u, v float64) int64 {
	sq := float64(u*u) + float64(v*v)
	return int64(math.RoundToEven(float64(spoolA*sq) + float64(spoolB*math.Sqrt(sq)) + spoolC))
}
