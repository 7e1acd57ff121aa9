package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/vigil/internal/service"
	"github.com/aretw0/vigil/pkg/config"
)

var listJSON bool

type watcherInfo struct {
	Name     string `json:"name"`
	WatchDir string `json:"watch_dir"`
	Active   bool   `json:"active"`
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured watchers",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		names, err := config.List()
		if err != nil {
			fatal("Failed to list watchers", err)
		}

		manager := service.NewManager(slog.Default())
		systemd := service.IsAvailable()

		var infos []watcherInfo
		for _, name := range names {
			info := watcherInfo{Name: name}

			path, err := config.PathFor(name)
			if err == nil {
				if cfg, err := config.Load(path); err == nil {
					info.WatchDir = cfg.WatchDir
				}
			}
			if systemd {
				info.Active = manager.IsActive(name)
			}
			infos = append(infos, info)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(infos); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		if len(infos) == 0 {
			fmt.Println("No watchers configured.")
			return
		}
		for _, info := range infos {
			status := "stopped"
			if info.Active {
				status = "running"
			}
			fmt.Printf("%-20s %-8s %s\n", info.Name, status, info.WatchDir)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
