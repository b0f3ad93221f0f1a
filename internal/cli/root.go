// Package cli implements the kobo command-line interface. `kobo serve` runs
// the daemon; the other commands are thin HTTP clients of a running daemon.
package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "kobo",
	Short: "Offline-first expense capture and sync daemon",
	Long: `kobo captures expense and income transactions locally, queues them while
the remote ledger is unreachable, and replays them once connectivity returns.
Delivery is at-least-once; the remote endpoint deduplicates on record id.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default ~/.kobo/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
