package kinematics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Analytic derivative of the spool model along a straight move, written
// in board units.
const (
	rateOffset = 0.0597013054131951
	rateQuad   = 1649.0197518368
	rateLinear = 14.35714
)

// frames returns the move as seen from each motor's corner; rotating the
// board a quarter turn at a time puts every anchor at the origin.
func frames(from, to Coordinate) [4][4]float64 {
	x1, x2, y1, y2 := from.X, to.X, from.Y, to.Y
	return [4][4]float64{
		{x1, x2, y1, y2},
		{y1, y2, BoardMax - x1, BoardMax - x2},
		{BoardMax - x1, BoardMax - x2, BoardMax - y1, BoardMax - y2},
		{BoardMax - y1, BoardMax - y2, x1, x2},
	}
}

// cableRate is the rate of change of cable length at normalized time t.
// A zero radius contributes no speed.
func cableRate(t, x1, x2, y1, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1

	termX := t*dx - x1 + rateOffset
	termY := t*dy - y1 + rateOffset
	r := math.Sqrt(termX*termX + termY*termY)
	if r == 0 {
		return 0
	}

	quad := rateQuad * spoolA * (-dx*termX - dy*termY) * r
	linear := rateLinear * spoolB * (2*-dx*termX + 2*-dy*termY)
	return (quad + linear) / r
}

// PeakSpeed returns the unscaled peak cable speed of a straight move,
// sampled at t=0 and t=-1 in all four corner frames.
func PeakSpeed(from, to Coordinate) float64 {
	speeds := make([]float64, 0, 8)
	for _, f := range frames(from, to) {
		for _, t := range [...]float64{0, -1} {
			speeds = append(speeds, math.Abs(cableRate(t, f[0], f[1], f[2], f[3])))
		}
	}
	return floats.Max(speeds)
}

// ScalingFactor returns the duration in seconds of a straight move that
// keeps every motor under opts.MaxStepRate, plus opts.Margin.
func ScalingFactor(from, to Coordinate, opts Options) (float64, error) {
	if err := from.Validate(); err != nil {
		return 0, err
	}
	if err := to.Validate(); err != nil {
		return 0, err
	}
	if err := opts.Validate(); err != nil {
		return 0, err
	}
	return PeakSpeed(from, to)/opts.MaxStepRate + opts.Margin, nil
}
