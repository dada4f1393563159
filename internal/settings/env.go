package settings

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Missing files are skipped; existing variables win.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// WithEnvFallback fills an empty API key from the environment: the
// provider-specific variable first, then OPENAI_API_KEY.
func WithEnvFallback(s Settings, getenv func(string) string) Settings {
	if s.HasAPIKey() || getenv == nil {
		return s
	}
	for _, name := range []string{s.Provider.EnvKey(), "OPENAI_API_KEY"} {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			s.APIKey = v
			return s
		}
	}
	return s
}
