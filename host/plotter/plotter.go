// Package plotter is the supervisory host: it plans moves, uploads them to
// the controller, polls positions and persists what the controller reports.
package plotter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"cableplot/host/config"
	"cableplot/host/serial"
	"cableplot/host/store"
	"cableplot/kinematics"
	"cableplot/protocol"
)

var (
	ErrNotConnected = errors.New("plotter not connected")
	ErrMoveTimeout  = errors.New("move did not reach its end position")
)

// Slack added to a move's planned duration before Wait gives up
const completionSlack = 2 * time.Second

// Plotter represents a connection to the plotter controller
type Plotter struct {
	cfg    config.Config
	opts   kinematics.Options
	logger *zap.Logger
	store  *store.Store

	port io.ReadWriteCloser
	link *protocol.Link

	mu        sync.Mutex
	positions protocol.Positions
}

// New creates a plotter (not yet connected). Positions start from the store.
func New(cfg config.Config, st *store.Store, logger *zap.Logger) *Plotter {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Plotter{
		cfg:    cfg,
		opts:   cfg.PlanOptions(),
		logger: logger,
		store:  st,
	}
	p.LoadPositions()
	return p
}

// Connect opens the configured serial device. With no device configured
// the port is looked up by USB VID/PID.
func (p *Plotter) Connect() error {
	device := p.cfg.SerialPort
	if device == "" {
		found, err := serial.FindPort(p.cfg.SerialVID, p.cfg.SerialPID)
		if err != nil {
			return fmt.Errorf("failed to find controller port: %w", err)
		}
		device = found
	}

	port, err := serial.Open(&serial.Config{
		Device:      device,
		Baud:        p.cfg.Baud,
		ReadTimeout: p.cfg.ReadTimeout,
	})
	if err != nil {
		return err
	}
	// Drop anything the controller sent before we were listening
	if err := port.Flush(); err != nil {
		p.logger.Warn("Failed to flush port", zap.String("port", device), zap.Error(err))
	}

	p.logger.Info("Connected", zap.String("port", device), zap.Int("baud", p.cfg.Baud))
	p.Attach(port)
	return nil
}

// Attach uses an already open port as the controller link
func (p *Plotter) Attach(port io.ReadWriteCloser) {
	p.port = port
	p.link = protocol.NewLink(port, p.cfg.Framing)
}

// Close closes the connection to the controller
func (p *Plotter) Close() error {
	if p.link == nil {
		return nil
	}
	err := p.link.Close()
	p.link = nil
	p.port = nil
	return err
}

// LoadPositions reloads the persisted positions, falling back to the
// configured defaults.
func (p *Plotter) LoadPositions() protocol.Positions {
	positions := p.cfg.InitialPositions
	if p.store != nil {
		var err error
		positions, err = p.store.Load()
		if err != nil {
			p.logger.Warn("Using default positions",
				zap.String("file", p.store.Path()),
				zap.Int64s("positions", positions.Slice()),
				zap.Error(err))
		}
	}
	p.setPositions(positions)
	return positions
}

// Positions returns the last known positions
func (p *Plotter) Positions() protocol.Positions {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positions
}

func (p *Plotter) setPositions(positions protocol.Positions) {
	p.mu.Lock()
	p.positions = positions
	p.mu.Unlock()
}

// Poll queries the controller once. A reported position is persisted; a
// timeout or malformed reply is returned and leaves everything unchanged.
func (p *Plotter) Poll() (protocol.Positions, error) {
	if p.link == nil {
		return protocol.Positions{}, ErrNotConnected
	}

	positions, err := p.link.QueryPositions(p.cfg.ReadTimeout)
	if err != nil {
		p.logger.Warn("Position poll failed", zap.Error(err))
		return protocol.Positions{}, err
	}

	p.setPositions(positions)
	if p.store != nil {
		if err := p.store.Save(positions); err != nil {
			p.logger.Error("Failed to persist positions", zap.Error(err))
			return positions, err
		}
	}
	p.logger.Debug("Positions", zap.Int64s("positions", positions.Slice()))
	return positions, nil
}

// Plan precalculates a move starting from the last known positions
func (p *Plotter) Plan(from, to kinematics.Coordinate) (*kinematics.Move, error) {
	move, err := kinematics.Plan(from, to, p.Positions(), p.opts)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Planned move",
		zap.String("move", move.ID),
		zap.String("from", move.From.String()),
		zap.String("to", move.To.String()),
		zap.Float64("scaling", move.Scaling),
		zap.Int("commands", len(move.Commands)))
	return move, nil
}

// Send uploads a planned move. It does not wait for the move to run.
func (p *Plotter) Send(move *kinematics.Move) error {
	if p.link == nil {
		return ErrNotConnected
	}
	if err := p.link.Upload(move.Commands); err != nil {
		p.logger.Error("Upload failed", zap.String("move", move.ID), zap.Error(err))
		return fmt.Errorf("failed to upload move %s: %w", move.ID, err)
	}
	p.logger.Info("Uploaded move", zap.String("move", move.ID), zap.Int("commands", len(move.Commands)))
	return nil
}

// Move synchronizes positions, then plans and uploads one move
func (p *Plotter) Move(ctx context.Context, from, to kinematics.Coordinate) (*kinematics.Move, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// A failed poll keeps the previous positions; planning still proceeds
	p.Poll()

	move, err := p.Plan(from, to)
	if err != nil {
		return nil, err
	}
	if err := p.Send(move); err != nil {
		return nil, err
	}
	return move, nil
}

// Wait polls until the controller reports the move's end positions
func (p *Plotter) Wait(ctx context.Context, move *kinematics.Move) error {
	ctx, cancel := context.WithTimeout(ctx, move.Duration()+completionSlack)
	defer cancel()

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: move %s, at %v, expected %v",
					ErrMoveTimeout, move.ID, p.Positions(), move.End)
			}
			return ctx.Err()
		case <-ticker.C:
		}

		positions, err := p.Poll()
		if err != nil {
			continue
		}
		if positions == move.End {
			p.logger.Info("Move complete", zap.String("move", move.ID),
				zap.Int64s("positions", positions.Slice()))
			return nil
		}
	}
}

// Run moves along path, waiting for each segment to complete
func (p *Plotter) Run(ctx context.Context, path []kinematics.Coordinate) error {
	if len(path) < 2 {
		return fmt.Errorf("path needs at least two points, got %d", len(path))
	}
	for i := 1; i < len(path); i++ {
		move, err := p.Move(ctx, path[i-1], path[i])
		if err != nil {
			return err
		}
		if err := p.Wait(ctx, move); err != nil {
			return err
		}
	}
	return nil
}

// Monitor polls at the configured interval until ctx is done. Failed
// polls are skipped.
func (p *Plotter) Monitor(ctx context.Context, report func(protocol.Positions)) error {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if positions, err := p.Poll(); err == nil && report != nil {
			report(positions)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
