package plotter

import (
	"io"
	"runtime"
	"sync"
	"time"

	"cableplot/core"
	"cableplot/protocol"
)

// Simulator runs a controller in-process on an in-memory port and a
// manual clock, connected to the host through a pair of pipes.
type Simulator struct {
	ctrl  *core.Controller
	clock *core.ManualClock
	pins  *core.MemPort
	tick  uint32
	pace  time.Duration // Wall time per tick, 0 runs flat out

	mu sync.Mutex // Guards ctrl once the loop is running

	toCtrlR *io.PipeReader
	toHostW *io.PipeWriter
	host    *simPort

	incoming  chan []byte
	stopChan  chan struct{}
	doneChan  chan struct{}
	closeOnce sync.Once
}

// NewSimulator starts a controller for rig. speed scales wall time against
// controller time; 1 is real time and 0 or less runs as fast as possible.
func NewSimulator(rig core.RigConfig, speed float64) (*Simulator, error) {
	pins := core.NewMemPort()
	clock := &core.ManualClock{}
	ctrl, err := core.NewController(pins, clock, rig)
	if err != nil {
		return nil, err
	}

	toCtrlR, toCtrlW := io.Pipe()
	toHostR, toHostW := io.Pipe()

	s := &Simulator{
		ctrl:     ctrl,
		clock:    clock,
		pins:     pins,
		tick:     rig.TickUs,
		toCtrlR:  toCtrlR,
		toHostW:  toHostW,
		host:     &simPort{r: toHostR, w: toCtrlW},
		incoming: make(chan []byte, 16),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	if speed > 0 {
		s.pace = time.Duration(float64(rig.TickUs)/speed) * time.Microsecond
	}

	go s.readLoop()
	go s.run()

	return s, nil
}

// Port returns the host end of the link
func (s *Simulator) Port() io.ReadWriteCloser {
	return s.host
}

// Positions returns the simulated controller's motor positions
func (s *Simulator) Positions() protocol.Positions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Positions()
}

// State returns the simulated dispatcher state
func (s *Simulator) State() core.DispatchState {
	return s.ctrl.Dispatcher().State()
}

// LateTicks returns how many dispatch ticks fired late
func (s *Simulator) LateTicks() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Dispatcher().LateTicks()
}

// Pins returns the simulated output port
func (s *Simulator) Pins() *core.MemPort {
	return s.pins
}

// Close stops the controller loop and closes both pipe ends
func (s *Simulator) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.toCtrlR.Close()
		s.toHostW.Close()
		<-s.doneChan
	})
	return nil
}

func (s *Simulator) readLoop() {
	buffer := make([]byte, 1024)
	for {
		n, err := s.toCtrlR.Read(buffer)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buffer[:n])
			select {
			case s.incoming <- data:
			case <-s.stopChan:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// run is the controller main loop: feed input, advance one tick, poll,
// flush replies.
func (s *Simulator) run() {
	defer close(s.doneChan)

	for {
		select {
		case <-s.stopChan:
			return
		default:
		}

		s.mu.Lock()
		s.feed()
		s.clock.Advance(s.tick)
		s.ctrl.Poll()
		var reply []byte
		if out := s.ctrl.Output().Result(); len(out) > 0 {
			reply = append(reply, out...)
			s.ctrl.Output().Reset()
		}
		s.mu.Unlock()

		if len(reply) > 0 {
			if _, err := s.toHostW.Write(reply); err != nil {
				return
			}
		}

		if s.pace > 0 {
			time.Sleep(s.pace)
		} else {
			runtime.Gosched()
		}
	}
}

func (s *Simulator) feed() {
	for {
		select {
		case data := <-s.incoming:
			s.ctrl.Feed(protocol.NewSliceInputBuffer(data))
		default:
			return
		}
	}
}

// simPort is the host's view of the simulator link
type simPort struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *simPort) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

func (p *simPort) Write(b []byte) (int, error) {
	return p.w.Write(b)
}

func (p *simPort) Close() error {
	p.w.Close()
	return p.r.Close()
}
