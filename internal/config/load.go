package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves the config path and materializes the runtime configuration.
// A missing file is not an error: defaults apply and a warning says so.
func Load(explicitPath string) (Loaded, error) {
	path, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	content, exists, err := readConfigFile(path)
	if err != nil {
		return Loaded{}, err
	}
	loaded := Loaded{Path: path, Exists: exists}

	if !exists {
		loaded.Config = Default()
		loaded.Warnings = []Warning{{
			Message: fmt.Sprintf("config file %q not found; using defaults", path),
		}}
		return loaded, nil
	}

	loaded.Config, loaded.Warnings, err = Parse(content, Default())
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	return loaded, nil
}

func readConfigFile(path string) (string, bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("stat config %q: %w", path, err)
	case info.IsDir():
		return "", false, fmt.Errorf("config path %q is a directory", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("read config %q: %w", path, err)
	}
	return string(content), true, nil
}
