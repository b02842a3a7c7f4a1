// Package config provides settings persistence for sshpanes.
package config

import (
	"os"
	"path/filepath"
)

// appDirName is the directory name used under the user config directory.
const appDirName = "sshpanes"

// Dir returns the per-user configuration directory
// (~/.config/sshpanes on Unix, %AppData%\sshpanes on Windows).
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), appDirName)
		}
		return filepath.Join(homeDir, "."+appDirName)
	}
	return filepath.Join(configDir, appDirName)
}

// SettingsPath returns the path of the JSON settings file.
func SettingsPath() string {
	return filepath.Join(Dir(), "settings.json")
}

// KeyCacheDir returns the directory identity keys are stabilized into.
// Restricted to the owner: cached keys are private key material.
func KeyCacheDir() string {
	return filepath.Join(Dir(), "keys")
}

// CredentialDir returns the directory the file-backed credential store
// writes to.
func CredentialDir() string {
	return filepath.Join(Dir(), "credentials")
}

// EnsureDir creates the configuration directory with owner-only access.
func EnsureDir() error {
	return os.MkdirAll(Dir(), 0700)
}
