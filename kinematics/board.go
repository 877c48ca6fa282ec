// Package kinematics converts board coordinates into cable lengths and
// precomputes a move as a fixed-rate stream of step commands.
package kinematics

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Board coordinates run over [BoardMin, BoardMax] on both axes
const (
	BoardMin = 1
	BoardMax = 8
)

const (
	boardOriginMM = 10.0
	boardPitchMM  = 28.71428
)

// ErrOutOfRange is returned for any board coordinate outside the board
var ErrOutOfRange = errors.New("board coordinate out of range")

// RangeError reports which component was out of range
type RangeError struct {
	Axis  string
	Value float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s=%g outside [%d, %d]", e.Axis, e.Value, BoardMin, BoardMax)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

// Coordinate is a logical position on the drawing board
type Coordinate struct {
	X, Y float64
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%g, %g)", c.X, c.Y)
}

// Validate checks that both components lie on the board
func (c Coordinate) Validate() error {
	if !onBoard(c.X) {
		return &RangeError{Axis: "x", Value: c.X}
	}
	if !onBoard(c.Y) {
		return &RangeError{Axis: "y", Value: c.Y}
	}
	return nil
}

// MM returns the physical position in millimeters
func (c Coordinate) MM() (x, y float64, err error) {
	if err := c.Validate(); err != nil {
		return 0, 0, err
	}
	return boardToMM(c.X), boardToMM(c.Y), nil
}

// BoardToMM maps one board coordinate component to millimeters
func BoardToMM(n float64) (float64, error) {
	if !onBoard(n) {
		return 0, &RangeError{Axis: "n", Value: n}
	}
	return boardToMM(n), nil
}

func boardToMM(n float64) float64 {
	return boardOriginMM + (n-1)*boardPitchMM
}

// onBoard is false for NaN as well
func onBoard(n float64) bool {
	return n >= BoardMin && n <= BoardMax
}

// ParseCoordinate parses "x,y" and validates it
func ParseCoordinate(s string) (Coordinate, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return Coordinate{}, fmt.Errorf("coordinate %q: expected x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	c := Coordinate{X: x, Y: y}
	return c, c.Validate()
}
