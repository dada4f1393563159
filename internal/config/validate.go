package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	switch cfg.Capture.Backend {
	case "ffmpeg":
		if strings.TrimSpace(cfg.Capture.Command) == "" {
			return nil, fmt.Errorf("capture.command must not be empty when capture.backend=ffmpeg")
		}
		if strings.TrimSpace(cfg.Capture.InputFormat) == "" {
			return nil, fmt.Errorf("capture.input_format must not be empty when capture.backend=ffmpeg")
		}
	case "pulse":
	case "":
		return nil, fmt.Errorf("capture.backend must not be empty")
	default:
		return nil, fmt.Errorf("capture.backend must be one of: ffmpeg, pulse")
	}
	if cfg.Capture.SampleRate <= 0 {
		return nil, fmt.Errorf("capture.sample_rate must be > 0")
	}

	if cfg.Indicator.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.error_timeout_ms must be >= 0")
	}
	if cfg.Indicator.Enable && strings.TrimSpace(cfg.Indicator.AppName) == "" {
		return nil, fmt.Errorf("indicator.app_name must not be empty when indicator.enable=true")
	}
	if len(cfg.Clipboard.Argv) == 0 {
		return nil, fmt.Errorf("clipboard_cmd must not be empty")
	}
	if cfg.Paste.Enable && len(cfg.PasteCmd.Argv) == 0 {
		return nil, fmt.Errorf("paste_cmd must not be empty when paste.enable=true")
	}
	if !cfg.Paste.Enable {
		warnings = append(warnings, Warning{Message: "paste.enable=false; transcripts are copied to the clipboard only"})
	}

	if err := validateBaseURL("providers.openai.base_url", cfg.Providers.OpenAIBaseURL); err != nil {
		return nil, err
	}
	if err := validateBaseURL("providers.groq.base_url", cfg.Providers.GroqBaseURL); err != nil {
		return nil, err
	}
	if cfg.Transcribe.TimeoutMS < 0 {
		return nil, fmt.Errorf("transcribe.timeout_ms must be >= 0")
	}
	if cfg.Transcribe.TimeoutMS == 0 {
		warnings = append(warnings, Warning{Message: "transcribe.timeout_ms=0 disables the request timeout"})
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	return warnings, nil
}

func validateBaseURL(field string, raw string) error {
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", field)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", field)
	}
	return nil
}
