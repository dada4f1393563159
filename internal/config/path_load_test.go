package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPrecedence(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	explicit := "/tmp/custom.jsonc"
	resolved, err := ResolvePath(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, "alphavoice", "config.jsonc"), resolved)

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "alphavoice", "config.jsonc"), resolved)
}

func TestStorePathDefaultsUnderStateDir(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	path, err := StorePath(Default())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(state, "alphavoice", "store"), path)

	cfg := Default()
	cfg.Store.Path = "/var/lib/alphavoice"
	path, err = StorePath(cfg)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/alphavoice", path)
}

func TestLoadMissingConfigUsesDefaultsWithWarning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.jsonc")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.False(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadExistingJSONCParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.jsonc")
	contents := `
{
  // route groq through a local gateway
  "providers": {
    "groq": {"base_url": "http://127.0.0.1:8080/openai/v1"},
  },
  "capture": {
    "backend": "pulse",
    "input": "Elgato",
  },
  "paste": {
    "enable": false
  }
}
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, path, loaded.Path)
	require.Equal(t, "http://127.0.0.1:8080/openai/v1", loaded.Config.Providers.GroqBaseURL)
	require.Equal(t, "pulse", loaded.Config.Capture.Backend)
	require.Equal(t, "Elgato", loaded.Config.Capture.Input)
	require.False(t, loaded.Config.Paste.Enable)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0].Message, "clipboard only")
}

func TestLoadParseErrorIncludesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jsonc")
	require.NoError(t, os.WriteFile(path, []byte("{ not-json }"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
	require.Contains(t, err.Error(), path)
}

func TestParseRejectsNonObjectContent(t *testing.T) {
	_, _, err := Parse("paste.enable = false\n", Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "JSONC object")
}

func TestParseEmptyContentReturnsBase(t *testing.T) {
	cfg, _, err := Parse("   \n", Default())
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestResolvePathUsesEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvConfigPath, "/etc/alphavoice.jsonc")

	resolved, err := ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, "/etc/alphavoice.jsonc", resolved)

	resolved, err = ResolvePath("/tmp/flag.jsonc")
	require.NoError(t, err)
	require.Equal(t, "/tmp/flag.jsonc", resolved)
}

func TestLoadRejectsDirectoryPath(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "is a directory")
}
