// Package config loads the host settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cableplot/kinematics"
	"cableplot/protocol"
)

// Environment variable names
const (
	EnvSerialPort       = "PLOTTER_SERIAL_PORT"
	EnvSerialVID        = "PLOTTER_SERIAL_VID"
	EnvSerialPID        = "PLOTTER_SERIAL_PID"
	EnvBaud             = "PLOTTER_BAUD"
	EnvReadTimeout      = "PLOTTER_READ_TIMEOUT"
	EnvPositionFile     = "PLOTTER_POSITION_FILE"
	EnvInitialPositions = "PLOTTER_INITIAL_POSITIONS"
	EnvTickUs           = "PLOTTER_TICK_US"
	EnvMaxStepRate      = "PLOTTER_MAX_STEP_RATE"
	EnvPollInterval     = "PLOTTER_POLL_INTERVAL"
	EnvFraming          = "PLOTTER_FRAMING"
)

// MinPollInterval is the shortest interval between position queries
const MinPollInterval = 500 * time.Millisecond

// Config holds every host setting
type Config struct {
	SerialPort string
	SerialVID  string // Used to find the port when SerialPort is empty
	SerialPID  string
	Baud       int

	// ReadTimeout bounds each position query round trip
	ReadTimeout time.Duration

	PositionFile     string
	InitialPositions protocol.Positions // Used when the position file is unusable

	TickUs       uint32
	MaxStepRate  float64
	PollInterval time.Duration
	Framing      protocol.Framing
}

// Default returns the reference rig's host settings
func Default() Config {
	opts := kinematics.DefaultOptions()
	return Config{
		SerialPort:       "/dev/ttyS0",
		Baud:             115200,
		ReadTimeout:      time.Second,
		PositionFile:     "robot_position.txt",
		InitialPositions: protocol.Positions{6503, 0, 3826, 5980},
		TickUs:           opts.TickUs,
		MaxStepRate:      opts.MaxStepRate,
		PollInterval:     MinPollInterval,
		Framing:          protocol.FramingReserved,
	}
}

// Load reads the given .env files (".env" when none are named; a missing
// file is not an error) and then the process environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("failed to load env files: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from Default overridden by lookup
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var errs []error
	get := func(key string, parse func(string) error) {
		value, ok := lookup(key)
		if !ok {
			return
		}
		if err := parse(strings.TrimSpace(value)); err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", key, value, err))
		}
	}

	get(EnvSerialPort, func(v string) error {
		cfg.SerialPort = v
		return nil
	})
	get(EnvSerialVID, func(v string) error {
		cfg.SerialVID = v
		return nil
	})
	get(EnvSerialPID, func(v string) error {
		cfg.SerialPID = v
		return nil
	})
	get(EnvBaud, func(v string) (err error) {
		cfg.Baud, err = strconv.Atoi(v)
		return err
	})
	get(EnvReadTimeout, func(v string) (err error) {
		cfg.ReadTimeout, err = time.ParseDuration(v)
		return err
	})
	get(EnvPositionFile, func(v string) error {
		cfg.PositionFile = v
		return nil
	})
	get(EnvInitialPositions, func(v string) (err error) {
		cfg.InitialPositions, err = protocol.ParsePositions(v)
		return err
	})
	get(EnvTickUs, func(v string) error {
		n, err := strconv.ParseUint(v, 10, 32)
		cfg.TickUs = uint32(n)
		return err
	})
	get(EnvMaxStepRate, func(v string) (err error) {
		cfg.MaxStepRate, err = strconv.ParseFloat(v, 64)
		return err
	})
	get(EnvPollInterval, func(v string) (err error) {
		cfg.PollInterval, err = time.ParseDuration(v)
		return err
	})
	get(EnvFraming, func(v string) (err error) {
		cfg.Framing, err = protocol.FramingByName(v)
		return err
	})

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval < MinPollInterval {
		cfg.PollInterval = MinPollInterval
	}
	return cfg, cfg.Validate()
}

// Validate checks values that would otherwise fail later
func (c Config) Validate() error {
	if c.Baud <= 0 {
		return fmt.Errorf("baud must be positive, got %d", c.Baud)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %s", c.ReadTimeout)
	}
	if c.PositionFile == "" {
		return errors.New("position file must be set")
	}
	return c.PlanOptions().Validate()
}

// PlanOptions returns the kinematics options for this rig
func (c Config) PlanOptions() kinematics.Options {
	opts := kinematics.DefaultOptions()
	opts.TickUs = c.TickUs
	opts.MaxStepRate = c.MaxStepRate
	return opts
}
