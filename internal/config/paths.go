package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "tasklist"

// DefaultPath is the config file location used when --config is not given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// DataPath returns the local task cache path, creating its directory.
func DataPath() (string, error) {
	p, err := xdg.DataFile(filepath.Join(appName, "tasks.db"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve data directory: %w", err)
	}
	return p, nil
}

// LogPath returns the log file path, creating its directory.
func LogPath() (string, error) {
	p, err := xdg.StateFile(filepath.Join(appName, appName+".log"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve log directory: %w", err)
	}
	return p, nil
}
