package vigil

import (
	"context"
	"log/slog"

	"github.com/aretw0/vigil/pkg/config"
	"github.com/aretw0/vigil/pkg/vigil"
)

// Daemon is a public alias for the watcher daemon.
type Daemon = vigil.Daemon

// LoadConfig loads the configuration for a named watcher.
func LoadConfig(name string) (config.Config, error) {
	path, err := config.PathFor(name)
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(path)
}

// New assembles a daemon for a named watcher.
func New(name string, logger *slog.Logger) (*Daemon, error) {
	cfg, err := LoadConfig(name)
	if err != nil {
		return nil, err
	}
	return vigil.NewDaemon(cfg, logger)
}

// Run loads a named watcher and runs its daemon until ctx is cancelled.
func Run(ctx context.Context, name string, logger *slog.Logger) error {
	daemon, err := New(name, logger)
	if err != nil {
		return err
	}
	return daemon.Run(ctx)
}
