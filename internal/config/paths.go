// Package config persists the OAuth2 and cloud-provider credentials the
// sync CLI needs to talk to a drive, as TOML at a per-OS config path.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Dir returns the directory the config file lives in.
//
// Locations:
//   - Windows: %LOCALAPPDATA%\adrive-sync
//   - Other platforms: os.UserConfigDir()/adrive-sync (~/.config/adrive-sync
//     on Linux without XDG_CONFIG_HOME), or ~/.config/adrive-sync if
//     os.UserConfigDir fails
func Dir() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "adrive-sync")
			}
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, "adrive-sync")
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return filepath.Join(os.TempDir(), "adrive-sync")
		}
		return filepath.Join(homeDir, ".config", "adrive-sync")
	}
	return filepath.Join(configDir, "adrive-sync")
}

// FilePath returns the path of the credential config file.
func FilePath() string {
	return filepath.Join(Dir(), "config.toml")
}

// EnsureDir creates the config directory if it doesn't exist, restricted to
// the owner since it holds credentials.
func EnsureDir() error {
	return os.MkdirAll(Dir(), 0o700)
}
