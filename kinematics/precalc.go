package kinematics

import (
	"errors"
	"math"

	"cableplot/protocol"
)

var ErrScaling = errors.New("scaling factor must be positive")

// Precalculate walks virtual time from zero in tickUs steps up to
// scaling seconds and emits one CommandByte per tick. Each motor is
// simulated from start and stepped by at most one unit per tick whenever
// its target is more than half a step away, so rounding never
// accumulates. It returns the stream and the simulated final lengths.
func Precalculate(traj Trajectory, scaling float64, start Lengths, tickUs uint32) ([]protocol.CommandByte, Lengths, error) {
	if !(scaling > 0) || math.IsInf(scaling, 0) {
		return nil, start, ErrScaling
	}
	if tickUs == 0 {
		return nil, start, ErrInvalidOptions
	}

	limit := scaling * 1e6
	commands := make([]protocol.CommandByte, 0, int(limit/float64(tickUs))+1)
	sim := start

	for us := uint64(0); float64(us) <= limit; us += uint64(tickUs) {
		u := float64(us) / 1e6 / scaling
		target, err := CableLengths(traj.Position(u))
		if err != nil {
			return nil, start, err
		}

		var actions [protocol.MotorCount]protocol.Action
		for i := range sim {
			gap := float64(target[i] - sim[i])
			if math.Abs(gap) > 0.5 {
				step := int64(1)
				if gap < 0 {
					step = -1
				}
				sim[i] += step
				actions[i] = protocol.ActionFor(int(step))
			}
		}
		commands = append(commands, protocol.EncodeCommand(actions))
	}

	return commands, sim, nil
}
