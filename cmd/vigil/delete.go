package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/vigil/internal/service"
	"github.com/aretw0/vigil/pkg/config"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a watcher's service and configuration",
	Long: `Stop a watcher, remove its service unit and delete its
configuration. The watched directory and its git history are untouched.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		if service.IsAvailable() {
			if err := service.NewManager(slog.Default()).Remove(name); err != nil {
				fatal("Failed to remove service", err)
			}
		}

		path, err := config.PathFor(name)
		if err != nil {
			fatal("Failed to resolve config path", err)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			fatal("Failed to remove config", err)
		}

		fmt.Println("Deleted watcher", name)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
