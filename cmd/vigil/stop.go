package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/vigil/internal/service"
)

// stopCmd represents the stop command
var stopCmd = &cobra.Command{
	Use:   "stop <name>",
	Short: "Stop a watcher's background service",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		if err := service.NewManager(slog.Default()).Stop(name); err != nil {
			fatal("Failed to stop service", err)
		}
		fmt.Println("Stopped watcher", name)
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
