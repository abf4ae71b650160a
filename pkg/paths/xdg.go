// Package paths provides XDG-compliant path resolution for pulse.
//
// Resolution order:
// 1. PULSE_HOME (portable root) → $PULSE_HOME/{config,state,run}
// 2. XDG env vars → $XDG_*_HOME/pulse
// 3. Platform defaults → ~/.config/pulse, ~/.local/state/pulse
package paths

import (
	"os"
	"path/filepath"
)

const appName = "pulse"

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if home := os.Getenv("PULSE_HOME"); home != "" {
		return filepath.Join(home, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

// getStateHome returns the base state home directory.
func getStateHome() string {
	if home := os.Getenv("PULSE_HOME"); home != "" {
		return filepath.Join(home, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state")
	}
	return ""
}

// ConfigDir returns the pulse configuration directory.
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	if os.Getenv("PULSE_HOME") != "" {
		return base
	}
	return filepath.Join(base, appName)
}

// StateDir returns the pulse state directory.
// Used for the pidfile and logs.
func StateDir() string {
	base := getStateHome()
	if base == "" {
		return ""
	}
	if os.Getenv("PULSE_HOME") != "" {
		return base
	}
	return filepath.Join(base, appName)
}

// LogDir returns the directory daily log files are written to.
func LogDir() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "logs")
}

// RuntimeDir returns the directory for the status socket.
// Uses XDG_RUNTIME_DIR when available (Linux), falls back to StateDir (macOS).
func RuntimeDir() string {
	if home := os.Getenv("PULSE_HOME"); home != "" {
		return filepath.Join(home, "run")
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return StateDir()
}

// GlobalConfigFile returns the path of the user-wide configuration file.
func GlobalConfigFile() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "pulse.yml")
}

// SocketPath returns the path to the status unix socket.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), "pulse.sock")
}

// PidFilePath returns the path to the PID file.
func PidFilePath() string {
	return filepath.Join(StateDir(), "pulse.pid")
}

// EnsureDirs creates all pulse directories if they don't exist.
func EnsureDirs() error {
	for _, dir := range []string{ConfigDir(), StateDir(), LogDir(), RuntimeDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
