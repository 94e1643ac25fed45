// Package main is the webmetro CLI: dump, filter, relay and send, per
// spec.md §6's CLI surface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tangent128/webmetro/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "webmetro",
	Short: "A WebM live-streaming relay",
	Long: `webmetro moves WebM video between files, stdin/stdout and HTTP
endpoints, re-chunking and timecode-fixing it along the way.`,
	SilenceUsage: true,
}

func main() {
	logging.Init()
	rootCmd.AddCommand(dumpCmd, filterCmd, relayCmd, sendCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
