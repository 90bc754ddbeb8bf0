// Command venuesim runs a standalone venue: it loads a config file, builds
// an instrument list, and drives the trading-system facade. It is a demo
// harness, not a gateway — nothing here speaks FIX or any wire admin
// protocol; it only exercises the facade through the same middleware
// channels a real gateway would bind to.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "venuesim",
	Short: "Run and exercise the venue simulator trading system",
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (optional, defaults layered under it)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(sendCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
