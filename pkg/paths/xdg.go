// Package paths provides XDG-compliant path resolution for casemgmt.
//
// Resolution order:
// 1. CASEMGMT_HOME (portable root) → $CASEMGMT_HOME/{config,state}
// 2. XDG env vars → $XDG_*_HOME/casemgmt
// 3. Platform defaults → ~/.config/casemgmt, ~/.local/state/casemgmt
package paths

import (
	"os"
	"path/filepath"
)

const appName = "casemgmt"

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if home := os.Getenv("CASEMGMT_HOME"); home != "" {
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
	if home := os.Getenv("CASEMGMT_HOME"); home != "" {
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

// ConfigDir returns the casemgmt configuration directory.
func ConfigDir() string {
	if os.Getenv("CASEMGMT_HOME") != "" {
		return getConfigHome()
	}
	base := getConfigHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, appName)
}

// StateDir returns the casemgmt state directory.
// Used for the pid file and logs.
func StateDir() string {
	if os.Getenv("CASEMGMT_HOME") != "" {
		return getStateHome()
	}
	base := getStateHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, appName)
}

// RuntimeDir returns the directory for the daemon socket.
// Uses XDG_RUNTIME_DIR when available (Linux), falls back to StateDir (macOS).
func RuntimeDir() string {
	if home := os.Getenv("CASEMGMT_HOME"); home != "" {
		return filepath.Join(home, "run")
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return StateDir()
}

// SocketPath returns the path to the daemon unix socket.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), "casemgmtd.sock")
}

// PidFilePath returns the path to the daemon PID file.
func PidFilePath() string {
	return filepath.Join(StateDir(), "casemgmtd.pid")
}
