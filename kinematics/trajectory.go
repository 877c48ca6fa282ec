package kinematics

// Trajectory maps normalized move time u in [0, 1] to a board coordinate.
// Precalculate only needs this, so new path shapes plug in without
// touching the dispatcher or the link.
type Trajectory interface {
	Position(u float64) Coordinate
}

// TrajectoryFunc adapts a function to the Trajectory interface
type TrajectoryFunc func(u float64) Coordinate

func (f TrajectoryFunc) Position(u float64) Coordinate {
	return f(u)
}

// Line is a straight move between two coordinates
type Line struct {
	From, To Coordinate
}

// Position interpolates linearly. u is clamped so that rounding on the
// final tick cannot step off the board.
func (l Line) Position(u float64) Coordinate {
	if u < 0 {
		u = 0
	} else if u > 1 {
		u = 1
	}
	return Coordinate{
		X: l.From.X + (l.To.X-l.From.X)*u,
		Y: l.From.Y + (l.To.Y-l.From.Y)*u,
	}
}
