// Package config loads and validates per-watcher configuration.
//
// Each watcher is described by one YAML file under the user configuration
// directory (e.g. ~/.config/vigil/notes.yaml). The file is read once at
// daemon start and is immutable for the process lifetime.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appDirName = "vigil"
	fileExt    = ".yaml"
)

// Push controls how a commit is pushed when auto_push is enabled.
// The SSH key is tried first when set (or when the conventional key exists);
// the host credential helper is the fallback.
type Push struct {
	SSHKey              string `yaml:"ssh_key,omitempty"`
	UseCredentialHelper bool   `yaml:"use_credential_helper"`
}

// Config describes one watched directory.
//
// Example:
//
//	name: notes
//	watch_dir: /home/user/notes
//	commit_delay_secs: 3
//	auto_push: true
//	ignore_patterns:
//	  - "**/*.tmp"
type Config struct {
	Name            string   `yaml:"name"`
	WatchDir        string   `yaml:"watch_dir"`
	CommitDelaySecs int      `yaml:"commit_delay_secs"`
	AutoPush        bool     `yaml:"auto_push"`
	IgnorePatterns  []string `yaml:"ignore_patterns,omitempty"`
	Push            Push     `yaml:"push,omitempty"`
}

// Default returns a Config with the documented defaults applied.
func Default(name, watchDir string) Config {
	return Config{
		Name:            name,
		WatchDir:        watchDir,
		CommitDelaySecs: 3,
		AutoPush:        true,
		Push: Push{
			UseCredentialHelper: true,
		},
	}
}

// Load reads and validates a watcher configuration file.
// Absent optional fields keep their defaults (auto_push defaults to true).
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	// Unmarshal over a defaulted struct so absent keys keep their defaults.
	cfg := Default("", "")
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.WatchDir = ExpandHome(cfg.WatchDir)
	cfg.Push.SSHKey = ExpandHome(cfg.Push.SSHKey)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants the daemon relies on. Missing required
// fields are a load-time fatal error.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config is missing 'name'")
	}
	if c.WatchDir == "" {
		return fmt.Errorf("config is missing 'watch_dir'")
	}
	if !filepath.IsAbs(c.WatchDir) {
		return fmt.Errorf("watch_dir must be absolute: %s", c.WatchDir)
	}
	info, err := os.Stat(c.WatchDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("watch_dir does not exist: %s", c.WatchDir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat watch_dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch_dir is not a directory: %s", c.WatchDir)
	}
	if c.CommitDelaySecs <= 0 {
		return fmt.Errorf("commit_delay_secs must be positive, got %d", c.CommitDelaySecs)
	}
	return nil
}

// Delay returns the quiet period as a duration.
func (c Config) Delay() time.Duration {
	return time.Duration(c.CommitDelaySecs) * time.Second
}

// Dump serializes the configuration to YAML. Useful for debugging and for
// writing the file at create time.
func (c Config) Dump() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Save writes the configuration to its place in the config directory,
// creating the directory if needed.
func (c Config) Save() (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	path, err := PathFor(c.Name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	out, err := c.Dump()
	if err != nil {
		return "", fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

// Dir returns the directory holding watcher configuration files.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// PathFor returns the configuration file path for a watcher name.
func PathFor(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+fileExt), nil
}

// List returns the names of all configured watchers.
func List() ([]string, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != fileExt {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), fileExt))
	}
	return names, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
