// Package config resolves, parses, validates, and defaults alphavoice runtime configuration.
package config

// Config is the fully materialized runtime configuration used by alphavoice.
//
// User-facing settings (API key, provider, hotkey) live in the settings store;
// this file only carries machine-level wiring.
type Config struct {
	Capture    CaptureConfig
	Paste      PasteConfig
	Clipboard  CommandConfig
	PasteCmd   CommandConfig
	Indicator  IndicatorConfig
	Providers  ProvidersConfig
	Transcribe TranscribeConfig
	Transcript TranscriptConfig
	Store      StoreConfig
	Tray       TrayConfig
	Log        LogConfig
	Debug      DebugConfig
}

// CaptureConfig selects the microphone capture backend.
type CaptureConfig struct {
	Backend     string
	Command     string
	InputFormat string
	Input       string
	Fallback    string
	SampleRate  int
}

// PasteConfig controls post-commit paste behavior.
type PasteConfig struct {
	Enable bool
}

// IndicatorConfig controls desktop notification and audio cue behavior.
type IndicatorConfig struct {
	Enable            bool
	AppName           string
	SoundEnable       bool
	SoundStartFile    string
	SoundStopFile     string
	SoundCompleteFile string
	SoundCancelFile   string
	ErrorTimeoutMS    int
}

// ProvidersConfig overrides provider endpoints for OpenAI-compatible gateways.
type ProvidersConfig struct {
	OpenAIBaseURL string
	GroqBaseURL   string
}

// TranscribeConfig controls the transcription HTTP client.
type TranscribeConfig struct {
	TimeoutMS  int
	ScratchDir string
}

// TranscriptConfig controls transcript formatting before commit.
type TranscriptConfig struct {
	TrailingSpace bool
}

// StoreConfig locates the durable settings store.
type StoreConfig struct {
	Path string
}

// TrayConfig toggles the menu-bar surface.
type TrayConfig struct {
	Enable bool
}

// LogConfig controls the structured log sink.
type LogConfig struct {
	Level string
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	EnableAudioDump bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
