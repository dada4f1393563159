// Package settings persists user-mutable configuration and the word counter.
package settings

import (
	"strings"

	"github.com/alphavoice/alphavoice/internal/transcribe"
)

// DefaultHotkey is the shortcut used until the user picks another one.
const DefaultHotkey = "Option+Space"

// Settings is the user-facing configuration snapshot a session runs with.
type Settings struct {
	APIKey        string
	Provider      transcribe.Provider
	Hotkey        string
	ShowIndicator bool
}

// Default returns the settings used for keys the store has never seen.
func Default() Settings {
	return Settings{
		Provider:      transcribe.Primary,
		Hotkey:        DefaultHotkey,
		ShowIndicator: true,
	}
}

// HasAPIKey reports whether a non-blank key is configured.
func (s Settings) HasAPIKey() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

// Request builds the transcription request for this snapshot.
func (s Settings) Request() transcribe.Request {
	return transcribe.Request{APIKey: strings.TrimSpace(s.APIKey), Provider: s.Provider}
}

// Patch is a partial update: nil fields leave the stored value untouched.
type Patch struct {
	APIKey        *string
	Provider      *transcribe.Provider
	Hotkey        *string
	ShowIndicator *bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.APIKey == nil && p.Provider == nil && p.Hotkey == nil && p.ShowIndicator == nil
}

// Apply merges p onto s.
func (s Settings) Apply(p Patch) Settings {
	if p.APIKey != nil {
		s.APIKey = strings.TrimSpace(*p.APIKey)
	}
	if p.Provider != nil {
		s.Provider = *p.Provider
	}
	if p.Hotkey != nil {
		s.Hotkey = strings.TrimSpace(*p.Hotkey)
	}
	if p.ShowIndicator != nil {
		s.ShowIndicator = *p.ShowIndicator
	}
	return s
}

// Redacted masks the API key for logs and status output.
func (s Settings) Redacted() string {
	key := strings.TrimSpace(s.APIKey)
	switch {
	case key == "":
		return "(not set)"
	case len(key) <= 8:
		return "****"
	default:
		return key[:4] + "…" + key[len(key)-4:]
	}
}
