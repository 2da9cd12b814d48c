package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const (
	configDirName = ".config"
	appDirName    = "vaultwalker"
	stateFileName = "state.json"
)

// State represents the persisted UI state.
type State struct {
	// ThemeIndex is the index of the selected theme
	ThemeIndex int `json:"theme_index"`
	// LastPath is the last path the browser was showing
	LastPath string `json:"last_path,omitempty"`
}

// DefaultState returns the default state for first run.
func DefaultState() State {
	return State{}
}

// configDir returns the path to the config directory (~/.config/vaultwalker).
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, appDirName), nil
}

// statePath returns the global path to the state file.
func statePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, stateFileName), nil
}

// Load reads the persisted UI state.
// Returns default state if the file doesn't exist or can't be read.
func Load() State {
	path, err := statePath()
	if err != nil {
		return DefaultState()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// File doesn't exist or can't be read - return defaults
		return DefaultState()
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		// Invalid JSON - return defaults
		return DefaultState()
	}

	return s
}

// Save writes the persisted UI state.
func Save(s State) error {
	dir, err := configDir()
	if err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := statePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
