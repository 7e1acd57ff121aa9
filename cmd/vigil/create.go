package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/vigil/internal/service"
	"github.com/aretw0/vigil/pkg/config"
)

var (
	createDelay  int
	createNoPush bool
	createIgnore []string
	createSSHKey string
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create <name> <path>",
	Short: "Configure a new watcher",
	Long: `Create a watcher configuration for a directory and install its
background service. The watcher is not started; use 'vigil start'.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		dir, err := filepath.Abs(config.ExpandHome(args[1]))
		if err != nil {
			fatal("Failed to resolve path", err)
		}

		cfg := config.Default(name, dir)
		cfg.CommitDelaySecs = createDelay
		cfg.AutoPush = !createNoPush
		cfg.IgnorePatterns = createIgnore
		cfg.Push.SSHKey = config.ExpandHome(createSSHKey)

		path, err := cfg.Save()
		if err != nil {
			fatal("Failed to save config", err)
		}
		fmt.Println("Created watcher config at", path)

		if !service.IsAvailable() {
			fmt.Println("systemd not available; run 'vigil daemon", name+"' manually")
			return
		}

		unit, err := service.NewManager(slog.Default()).Install(name)
		if err != nil {
			fatal("Failed to install service", err)
		}
		fmt.Println("Installed service unit at", unit)
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().IntVar(&createDelay, "delay", 3, "Quiet seconds before committing")
	createCmd.Flags().BoolVar(&createNoPush, "no-push", false, "Commit locally without pushing")
	createCmd.Flags().StringArrayVar(&createIgnore, "ignore", nil, "Glob pattern to ignore (repeatable)")
	createCmd.Flags().StringVar(&createSSHKey, "ssh-key", "", "SSH key used for pushing")
}
