package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cableplot/protocol"
)

var watch bool

// positionCmd queries the controller and persists the reply
var positionCmd = &cobra.Command{
	Use:   "position",
	Short: "Query and persist the controller's motor positions",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := connect()
		defer closePlotter(p)

		out := cmd.OutOrStdout()
		if !watch {
			positions, err := p.Poll()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, positions)
			return nil
		}

		ctx, cancel := signalContext()
		defer cancel()

		err := p.Monitor(ctx, func(positions protocol.Positions) {
			fmt.Fprintln(out, positions)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	positionCmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep polling until interrupted")
	rootCmd.AddCommand(positionCmd)
}
