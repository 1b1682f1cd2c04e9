package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - REPOCAT_CONFIG_PATH: config file location (default: ~/.config/repocat.toml)
//   - REPOCAT_HOME: base directory for repocat data (default: ~/.local/share/repocat)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"repos_dir":   filepath.Join(baseDir, "repos"),
	}, nil
}

// getConfigPath returns the config file path, checking REPOCAT_CONFIG_PATH env var
// first, then falling back to the default ~/.config/repocat.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("REPOCAT_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "repocat.toml"), nil
}

// getBaseDir returns the base directory for repocat data, checking REPOCAT_HOME
// env var first, then falling back to the XDG default ~/.local/share/repocat.
func getBaseDir() (string, error) {
	if path := os.Getenv("REPOCAT_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "repocat"), nil
}
