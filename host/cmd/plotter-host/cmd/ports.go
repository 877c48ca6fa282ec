package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cableplot/host/serial"
)

// portsCmd lists the serial ports the OS reports
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports with their USB IDs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := serial.ListPorts()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PORT\tVID\tPID\tSERIAL\tPRODUCT")
		for _, port := range ports {
			if !port.IsUSB {
				fmt.Fprintf(w, "%s\t-\t-\t-\t-\n", port.Name)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", port.Name, port.VID, port.PID, port.SerialNumber, port.Product)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
