package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cableplot/host/plotter"
	"cableplot/protocol"
)

var planOut string

// planCmd precalculates a move without touching the controller
var planCmd = &cobra.Command{
	Use:   "plan x,y x,y",
	Short: "Precalculate a move and print its summary",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := parseCoordinates(args)
		if err != nil {
			return err
		}

		p := plotter.New(cfg, newStore(), logger)
		move, err := p.Plan(points[0], points[1])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "move:     %s\n", move.ID)
		fmt.Fprintf(out, "from:     %s\n", move.From)
		fmt.Fprintf(out, "to:       %s\n", move.To)
		fmt.Fprintf(out, "scaling:  %.4fs\n", move.Scaling)
		fmt.Fprintf(out, "commands: %d\n", len(move.Commands))
		fmt.Fprintf(out, "duration: %s\n", move.Duration())
		fmt.Fprintf(out, "start:    %s\n", move.Start)
		fmt.Fprintf(out, "end:      %s\n", move.End)
		fmt.Fprintf(out, "steps:    %v\n", move.Steps())

		if _, err := cfg.Framing.EncodeUpload(move.Commands); err != nil {
			if !errors.Is(err, protocol.ErrMarkerCollision) {
				return err
			}
			fmt.Fprintf(out, "warning:  not transmittable with %s framing: %v\n", cfg.Framing.Name, err)
		}

		if planOut != "" {
			data := make([]byte, len(move.Commands))
			for i, c := range move.Commands {
				data[i] = byte(c)
			}
			if err := os.WriteFile(planOut, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", planOut, err)
			}
		}
		return nil
	},
}

func init() {
	planCmd.Flags().StringVarP(&planOut, "out", "o", "", "write the raw command stream to a file")
	rootCmd.AddCommand(planCmd)
}
