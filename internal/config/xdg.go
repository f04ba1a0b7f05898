// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultBooksDir returns the default directory scanned for EPUB files.
func DefaultBooksDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "books"
	}
	return filepath.Join(home, "books")
}

// DefaultDBPath returns the default path for the library index database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), "typepub", "library.db")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "typepub", "config.toml")
}
