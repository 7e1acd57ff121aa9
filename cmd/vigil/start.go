package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/vigil/internal/service"
	"github.com/aretw0/vigil/pkg/config"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start <name>",
	Short: "Start a watcher's background service",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		// Fail before touching systemd when the config is broken.
		path, err := config.PathFor(name)
		if err != nil {
			fatal("Failed to resolve config path", err)
		}
		if _, err := config.Load(path); err != nil {
			fatal("Invalid watcher config", err)
		}

		if err := service.NewManager(slog.Default()).Start(name); err != nil {
			fatal("Failed to start service", err)
		}
		fmt.Println("Started watcher", name)
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
