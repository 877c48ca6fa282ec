package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runFile string

// runCmd moves the plotter along a path of board coordinates
var runCmd = &cobra.Command{
	Use:   "run [x,y...]",
	Short: "Move along a path of board coordinates",
	Long: `Move along a path of board coordinates. The first point is where the
plotter is now; each following point is one straight move. Each move is
uploaded once the previous one has been reported complete.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := loadPath(runFile, args)
		if err != nil {
			return err
		}

		p := connect()
		defer closePlotter(p)

		ctx, cancel := signalContext()
		defer cancel()

		if err := p.Run(ctx, path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p.Positions())
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "read path points from a file (x,y or G0/G1 lines)")
	rootCmd.AddCommand(runCmd)
}
