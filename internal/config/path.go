package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const appDir = "alphavoice"

// EnvConfigPath overrides the config location when --config is not given.
const EnvConfigPath = "ALPHAVOICE_CONFIG"

// ResolvePath picks the config.jsonc location: --config, then
// $ALPHAVOICE_CONFIG, then the XDG config dir, then ~/.config.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return env, nil
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, appDir, "config.jsonc"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}

	return filepath.Join(home, ".config", appDir, "config.jsonc"), nil
}

// StateDir resolves the directory for logs, the settings store, and debug artifacts.
func StateDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return filepath.Join(xdg, appDir), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for state fallback")
	}
	return filepath.Join(home, ".local", "state", appDir), nil
}

// StorePath returns the configured settings store directory or its state-dir default.
func StorePath(cfg Config) (string, error) {
	if cfg.Store.Path != "" {
		return cfg.Store.Path, nil
	}
	stateDir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, "store"), nil
}
