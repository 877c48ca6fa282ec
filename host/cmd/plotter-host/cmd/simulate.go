package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cableplot/core"
	"cableplot/host/plotter"
)

var (
	simSpeed float64
	simFile  string
)

// simulateCmd runs a path against an in-process controller
var simulateCmd = &cobra.Command{
	Use:   "simulate [x,y...]",
	Short: "Run a path against a simulated controller",
	Long: `Run a path against a simulated controller. The simulated rig starts at
the persisted positions; the position file is not updated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := loadPath(simFile, args)
		if err != nil {
			return err
		}

		simCfg := cfg
		simCfg.InitialPositions, _ = newStore().Load()

		rig := core.DefaultRig()
		rig.TickUs = simCfg.TickUs
		rig.Framing = simCfg.Framing
		for i := range rig.Motors {
			rig.Motors[i].Position = simCfg.InitialPositions[i]
		}

		sim, err := plotter.NewSimulator(rig, simSpeed)
		if err != nil {
			return err
		}
		defer sim.Close()

		p := plotter.New(simCfg, nil, logger)
		p.Attach(sim.Port())
		defer closePlotter(p)

		ctx, cancel := signalContext()
		defer cancel()

		if err := p.Run(ctx, path); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sim.Positions())
		if late := sim.LateTicks(); late > 0 {
			fmt.Fprintf(out, "late ticks: %d\n", late)
		}
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVarP(&simFile, "file", "f", "", "read path points from a file (x,y or G0/G1 lines)")
	simulateCmd.Flags().Float64Var(&simSpeed, "speed", 0, "wall clock speed factor, 0 runs as fast as possible")
	rootCmd.AddCommand(simulateCmd)
}
