// Package service manages the systemd user units that keep watcher daemons
// running across logins and failures.
package service

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
)

const unitPrefix = "vigil-"

// Each watcher gets its own unit so they start, stop and fail independently.
const unitTemplate = `[Unit]
Description=vigil watcher for {{.Name}}
After=network.target

[Service]
Type=simple
ExecStart={{.Executable}} daemon {{.Name}}
Restart=on-failure
RestartSec=5

[Install]
WantedBy=default.target
`

// Manager installs and controls per-watcher systemd user units.
type Manager struct {
	Logger *slog.Logger
}

// NewManager creates a Manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{Logger: logger}
}

// IsAvailable reports whether systemctl can be invoked at all.
func IsAvailable() bool {
	_, err := exec.LookPath("systemctl")
	return err == nil
}

// UnitName returns the systemd unit name for a watcher.
func UnitName(name string) string {
	return unitPrefix + name + ".service"
}

// UnitDir returns the systemd user unit directory.
func UnitDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(base, "systemd", "user"), nil
}

// Install renders and writes the unit file for a watcher, then reloads the
// user manager so the unit becomes visible. Safe to re-run; an existing unit
// is overwritten.
func (m *Manager) Install(name string) (string, error) {
	executable, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable path: %w", err)
	}

	tmpl, err := template.New("unit").Parse(unitTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse unit template: %w", err)
	}

	var unit strings.Builder
	data := struct {
		Name       string
		Executable string
	}{Name: name, Executable: executable}
	if err := tmpl.Execute(&unit, data); err != nil {
		return "", fmt.Errorf("failed to render unit: %w", err)
	}

	dir, err := UnitDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create unit directory: %w", err)
	}

	path := filepath.Join(dir, UnitName(name))
	if err := os.WriteFile(path, []byte(unit.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write unit file: %w", err)
	}

	if _, err := m.systemctl("daemon-reload"); err != nil {
		return "", err
	}
	return path, nil
}

// Remove stops a watcher's unit and deletes its file.
func (m *Manager) Remove(name string) error {
	// Best-effort stop; the unit may not be running or even loaded.
	if _, err := m.systemctl("disable", "--now", UnitName(name)); err != nil && m.Logger != nil {
		m.Logger.Debug("disable failed", "unit", UnitName(name), "error", err)
	}

	dir, err := UnitDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, UnitName(name))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove unit file: %w", err)
	}

	_, err = m.systemctl("daemon-reload")
	return err
}

// Start enables and starts a watcher's unit.
func (m *Manager) Start(name string) error {
	_, err := m.systemctl("enable", "--now", UnitName(name))
	return err
}

// Stop stops a watcher's unit without disabling it.
func (m *Manager) Stop(name string) error {
	_, err := m.systemctl("stop", UnitName(name))
	return err
}

// IsActive reports whether a watcher's unit is currently running.
func (m *Manager) IsActive(name string) bool {
	out, err := m.systemctl("is-active", UnitName(name))
	return err == nil && strings.TrimSpace(out) == "active"
}

// Logs streams a watcher's journal to stdout/stderr until interrupted.
func (m *Manager) Logs(name string, follow bool) error {
	args := []string{"--user", "-u", UnitName(name)}
	if follow {
		args = append(args, "-f")
	}

	cmd := exec.Command("journalctl", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// systemctl runs a systemctl command against the user manager.
func (m *Manager) systemctl(args ...string) (string, error) {
	full := append([]string{"--user"}, args...)

	if m.Logger != nil {
		m.Logger.Debug("executing systemctl", "args", full)
	}

	cmd := exec.Command("systemctl", full...)
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, fmt.Errorf("systemctl %s failed: %w\nOutput: %s", args[0], err, output)
	}
	return output, nil
}
