package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cableplot/host/config"
	"cableplot/host/plotter"
	"cableplot/host/store"
	"cableplot/kinematics"
	"cableplot/protocol"
)

var (
	envFiles []string
	verbose  bool
	device   string
	framing  string

	cfg    config.Config
	logger *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "plotter-host",
	Short: "plotter-host plans cable plotter moves and streams them to the controller",
	Long: `plotter-host converts board coordinates into precalculated step streams,
uploads them over the serial link and keeps the controller's reported
motor positions in a position file.

Settings come from the environment (PLOTTER_*), optionally seeded from a
.env file. Flags override both.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		cfg, err = config.Load(envFiles...)
		if err != nil {
			return err
		}
		if device != "" {
			cfg.SerialPort = device
		}
		if framing != "" {
			cfg.Framing, err = protocol.FramingByName(framing)
			if err != nil {
				return err
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "env files to load (default .env if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "development logging")
	rootCmd.PersistentFlags().StringVarP(&device, "port", "p", "", "serial device (overrides "+config.EnvSerialPort+")")
	rootCmd.PersistentFlags().StringVar(&framing, "framing", "", "framing profile: reserved or classic")
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newStore() *store.Store {
	return store.New(cfg.PositionFile, cfg.InitialPositions)
}

// connect opens the controller link or exits
func connect() *plotter.Plotter {
	p := plotter.New(cfg, newStore(), logger)
	if err := p.Connect(); err != nil {
		logger.Fatal("Failed to open port", zap.String("port", cfg.SerialPort), zap.Error(err))
	}
	return p
}

func closePlotter(p *plotter.Plotter) {
	if err := p.Close(); err != nil {
		logger.Error("Failed to close port", zap.Error(err))
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// loadPath reads the --file path, if any, followed by the argument points
func loadPath(file string, args []string) ([]kinematics.Coordinate, error) {
	var path []kinematics.Coordinate
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if path, err = kinematics.ParsePath(f); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
	}
	points, err := parseCoordinates(args)
	if err != nil {
		return nil, err
	}
	return append(path, points...), nil
}

func parseCoordinates(args []string) ([]kinematics.Coordinate, error) {
	path := make([]kinematics.Coordinate, 0, len(args))
	for _, arg := range args {
		c, err := kinematics.ParseCoordinate(arg)
		if err != nil {
			return nil, err
		}
		path = append(path, c)
	}
	return path, nil
}
