package kinematics

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"cableplot/protocol"
)

var ErrInvalidOptions = errors.New("invalid planning options")

// Options are the planning parameters shared by every move
type Options struct {
	TickUs      uint32  // Dispatch period
	MaxStepRate float64 // Steps per second any one motor may be asked for
	Margin      float64 // Seconds added to every move
}

// DefaultOptions returns the rig's planning parameters
func DefaultOptions() Options {
	return Options{
		TickUs:      2000,
		MaxStepRate: 500,
		Margin:      0.2,
	}
}

func (o Options) Validate() error {
	if o.TickUs == 0 || !(o.MaxStepRate > 0) || o.Margin < 0 {
		return ErrInvalidOptions
	}
	return nil
}

// Move is one precalculated straight move. It is not modified after Plan.
type Move struct {
	ID       string
	From, To Coordinate
	Scaling  float64 // Seconds
	TickUs   uint32
	Start    Lengths // Lengths the stream was simulated from
	End      Lengths // Lengths after the last command
	Commands []protocol.CommandByte
}

// Plan precalculates a straight move from the given starting lengths
func Plan(from, to Coordinate, start Lengths, opts Options) (*Move, error) {
	scaling, err := ScalingFactor(from, to, opts)
	if err != nil {
		return nil, err
	}

	commands, end, err := Precalculate(Line{From: from, To: to}, scaling, start, opts.TickUs)
	if err != nil {
		return nil, err
	}

	return &Move{
		ID:       uuid.New().String(),
		From:     from,
		To:       to,
		Scaling:  scaling,
		TickUs:   opts.TickUs,
		Start:    start,
		End:      end,
		Commands: commands,
	}, nil
}

// Duration is the wall time the controller needs to replay the stream
func (m *Move) Duration() time.Duration {
	return time.Duration(len(m.Commands)) * time.Duration(m.TickUs) * time.Microsecond
}

// Steps returns the number of steps each motor takes
func (m *Move) Steps() [protocol.MotorCount]int {
	var steps [protocol.MotorCount]int
	for _, c := range m.Commands {
		for i := range steps {
			if c.Action(i) != protocol.Hold {
				steps[i]++
			}
		}
	}
	return steps
}
