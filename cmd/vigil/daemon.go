package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/vigil/pkg/config"
	"github.com/aretw0/vigil/pkg/vigil"
)

// daemonCmd represents the daemon command. It is what the service unit
// executes; running it by hand is useful for debugging a watcher.
var daemonCmd = &cobra.Command{
	Use:   "daemon <name>",
	Short: "Run a watcher in the foreground",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		path, err := config.PathFor(name)
		if err != nil {
			fatal("Failed to resolve config path", err)
		}
		cfg, err := config.Load(path)
		if err != nil {
			fatal("Failed to load config", err)
		}

		daemon, err := vigil.NewDaemon(cfg, slog.Default())
		if err != nil {
			fatal("Failed to initialize daemon", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := daemon.Run(ctx); err != nil {
			fatal("Daemon failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
