package core

import (
	"strconv"

	"cableplot/protocol"
)

// Controller is the controller-side context: motors, dispatcher, upload
// receiver and reply staging. Platform code feeds it link bytes and calls
// Poll from its main loop.
type Controller struct {
	rig        RigConfig
	clock      Clock
	sched      *Scheduler
	dispatcher *Dispatcher
	receiver   *protocol.Receiver
	output     *protocol.ScratchOutput
	report     [protocol.MaxReportLen]byte
}

// NewController builds the motors on port and wires the receiver to the
// dispatcher.
func NewController(port OutputPort, clock Clock, rig RigConfig) (*Controller, error) {
	if err := rig.Validate(); err != nil {
		return nil, err
	}

	var motors [protocol.MotorCount]*Motor
	for i, cfg := range rig.Motors {
		m, err := NewMotor(port, cfg)
		if err != nil {
			return nil, err
		}
		motors[i] = m
	}

	c := &Controller{
		rig:    rig,
		clock:  clock,
		sched:  NewScheduler(clock),
		output: protocol.NewScratchOutput(),
	}
	c.dispatcher = NewDispatcher(c.sched, motors)
	c.dispatcher.SetCompleteCallback(c.handleComplete)
	c.receiver = protocol.NewReceiver(rig.Framing, rig.MaxStreamLen, c.handleMove, c.handleQuery)
	c.receiver.SetIdleTimeout(TimerFromUS(rig.FrameTimeoutUs))
	c.receiver.SetDiscardCallback(c.handleDiscard)
	return c, nil
}

func (c *Controller) handleMove(stream []protocol.CommandByte) error {
	if err := c.dispatcher.Load(stream, c.rig.TickUs); err != nil {
		DebugAsync("[CTRL] move rejected: " + err.Error())
		return err
	}
	return nil
}

func (c *Controller) handleComplete(executed int, late uint32) {
	if !IsDebugEnabled() {
		return
	}
	DebugAsync("[CTRL] move complete: " + strconv.Itoa(executed) + " ticks, " +
		strconv.FormatUint(uint64(late), 10) + " late")
}

func (c *Controller) handleQuery() {
	RecordTiming(EvtPositionQuery, 0, c.clock.Now(), 0, 0)
	c.output.Output(protocol.AppendPositions(c.report[:0], c.dispatcher.Positions()))
}

func (c *Controller) handleDiscard(reason protocol.DiscardReason, dropped int) {
	RecordTiming(EvtFrameDiscarded, uint8(reason), c.clock.Now(), uint32(dropped), 0)
	DebugAsync("[CTRL] upload discarded: " + reason.String())
}

// Feed consumes received link bytes
func (c *Controller) Feed(input protocol.InputBuffer) {
	c.receiver.Receive(input, c.clock.Now())
}

// Poll expires stale partial uploads and runs due dispatch ticks
func (c *Controller) Poll() {
	c.receiver.Expire(c.clock.Now())
	c.sched.Dispatch()
}

// Output returns pending reply bytes. The caller transmits them and then
// calls Output().Reset().
func (c *Controller) Output() *protocol.ScratchOutput {
	return c.output
}

// Dispatcher returns the move dispatcher
func (c *Controller) Dispatcher() *Dispatcher {
	return c.dispatcher
}

// Receiver returns the upload receiver
func (c *Controller) Receiver() *protocol.Receiver {
	return c.receiver
}

// Positions returns the current motor positions
func (c *Controller) Positions() protocol.Positions {
	return c.dispatcher.Positions()
}

// Rig returns the configuration the controller was built with
func (c *Controller) Rig() RigConfig {
	return c.rig
}
