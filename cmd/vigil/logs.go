package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/vigil/internal/service"
)

var logsFollow bool

// logsCmd represents the logs command
var logsCmd = &cobra.Command{
	Use:   "logs <name>",
	Short: "Show a watcher's service logs",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := service.NewManager(slog.Default()).Logs(args[0], logsFollow); err != nil {
			fatal("Failed to read logs", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow the journal")
}
