// Package paths resolves the per-user directories twsdash reads and writes.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "twsdash"

// root picks a base directory: an absolute XDG override first, then the OS
// default, then a dot-directory under $HOME.
func root(xdgEnv string, osDefault func() (string, error), homeRelative string) (string, error) {
	if xdg := os.Getenv(xdgEnv); xdg != "" && filepath.IsAbs(xdg) {
		return filepath.Join(xdg, appName), nil
	}

	if osDefault != nil {
		if dir, err := osDefault(); err == nil && dir != "" {
			return filepath.Join(dir, appName), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home directory: %w", err)
	}

	if home == "" {
		return "", fmt.Errorf("resolve user home directory: empty path")
	}

	return filepath.Join(home, homeRelative, appName), nil
}

// ConfigRoot returns the directory holding config.yaml.
func ConfigRoot() (string, error) {
	return root("XDG_CONFIG_HOME", os.UserConfigDir, ".config")
}

// StateRoot returns the directory for logs and other runtime state.
// There is no OS-level state dir in the standard library, so only the XDG
// override and the ~/.local/state fallback apply.
func StateRoot() (string, error) {
	return root("XDG_STATE_HOME", nil, filepath.Join(".local", "state"))
}

// ConfigFile returns the path of the YAML config file.
func ConfigFile() (string, error) {
	dir, err := ConfigRoot()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.yaml"), nil
}

// LogsDir returns the directory for structured log files.
func LogsDir() (string, error) {
	dir, err := StateRoot()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "logs"), nil
}

// DefaultLogFile is where logs go when the panel owns the terminal and no
// --log-file was given.
func DefaultLogFile() (string, error) {
	dir, err := LogsDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, appName+".log"), nil
}
