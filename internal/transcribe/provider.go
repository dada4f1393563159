// Package transcribe sends recorded clips to a Whisper-compatible HTTP API.
package transcribe

import (
	"fmt"
	"strings"
)

// Provider is one of exactly two speech-to-text services. Each carries a
// fixed endpoint and model; the zero value behaves as Primary.
type Provider struct {
	name    string
	baseURL string
	model   string
	keyURL  string
	envKey  string
}

var (
	// Primary is OpenAI's hosted Whisper.
	Primary = Provider{
		name:    "openai",
		baseURL: "https://api.openai.com/v1",
		model:   "whisper-1",
		keyURL:  "https://platform.openai.com/api-keys",
		envKey:  "OPENAI_API_KEY",
	}
	// Alternate is Groq's OpenAI-compatible Whisper endpoint.
	Alternate = Provider{
		name:    "groq",
		baseURL: "https://api.groq.com/openai/v1",
		model:   "whisper-large-v3",
		keyURL:  "https://console.groq.com/keys",
		envKey:  "GROQ_API_KEY",
	}
)

// Providers lists every supported provider, Primary first.
func Providers() []Provider {
	return []Provider{Primary, Alternate}
}

// ParseProvider maps a stored or user-entered name onto a provider.
func ParseProvider(raw string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "openai", "primary":
		return Primary, nil
	case "groq", "alternate":
		return Alternate, nil
	default:
		return Provider{}, fmt.Errorf("unknown provider %q (want openai or groq)", raw)
	}
}

func (p Provider) resolved() Provider {
	if p.name == "" {
		return Primary
	}
	return p
}

func (p Provider) Name() string    { return p.resolved().name }
func (p Provider) BaseURL() string { return p.resolved().baseURL }
func (p Provider) Model() string   { return p.resolved().model }

// KeyURL is where a user creates an API key for this provider.
func (p Provider) KeyURL() string { return p.resolved().keyURL }

// EnvKey names the environment variable consulted when no key is stored.
func (p Provider) EnvKey() string { return p.resolved().envKey }

func (p Provider) String() string { return p.Name() }

// Equal compares providers with the zero value treated as Primary.
func (p Provider) Equal(other Provider) bool {
	return p.Name() == other.Name()
}
