// Package protocol implements the serial link between the plotter host and
// the motor controller: the packed per-tick command byte, the marker framing
// that carries a precalculated move, and the ASCII position report.
package protocol

// Version represents the link protocol revision
const Version = "0.1.0"

// Link constants
const (
	MotorCount = 4 // Cable spools driven by one controller

	FieldBits = 2    // Bits per motor in a CommandByte
	FieldMask = 0x03 // Mask for one motor field

	// MaxStreamLen bounds the command buffer the controller accepts for one
	// move. At the default 2000us tick this is a little over 65 seconds.
	MaxStreamLen = 32768

	// MaxReportLen bounds one position report line, newline included.
	MaxReportLen = 4*21 + 4
)
