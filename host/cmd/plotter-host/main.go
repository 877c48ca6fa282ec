// Command plotter-host drives the cable plotter over its serial link.
package main

import "cableplot/host/cmd/plotter-host/cmd"

func main() {
	cmd.Execute()
}
