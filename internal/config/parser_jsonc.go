package config

import (
	"fmt"
	"strings"
)

type jsoncConfig struct {
	Capture    *jsoncCapture    `json:"capture"`
	Paste      *jsoncPaste      `json:"paste"`
	Indicator  *jsoncIndicator  `json:"indicator"`
	Providers  *jsoncProviders  `json:"providers"`
	Transcribe *jsoncTranscribe `json:"transcribe"`
	Transcript *jsoncTranscript `json:"transcript"`
	Store      *jsoncStore      `json:"store"`
	Tray       *jsoncTray       `json:"tray"`
	Log        *jsoncLog        `json:"log"`

	ClipboardCmd *string     `json:"clipboard_cmd"`
	PasteCmd     *string     `json:"paste_cmd"`
	Debug        *jsoncDebug `json:"debug"`
}

type jsoncCapture struct {
	Backend     *string `json:"backend"`
	Command     *string `json:"command"`
	InputFormat *string `json:"input_format"`
	Input       *string `json:"input"`
	Fallback    *string `json:"fallback"`
	SampleRate  *int    `json:"sample_rate"`
}

type jsoncPaste struct {
	Enable *bool `json:"enable"`
}

type jsoncIndicator struct {
	Enable            *bool   `json:"enable"`
	AppName           *string `json:"app_name"`
	SoundEnable       *bool   `json:"sound_enable"`
	SoundStartFile    *string `json:"sound_start_file"`
	SoundStopFile     *string `json:"sound_stop_file"`
	SoundCompleteFile *string `json:"sound_complete_file"`
	SoundCancelFile   *string `json:"sound_cancel_file"`
	ErrorTimeoutMS    *int    `json:"error_timeout_ms"`
}

type jsoncProviders struct {
	OpenAI *jsoncEndpoint `json:"openai"`
	Groq   *jsoncEndpoint `json:"groq"`
}

type jsoncEndpoint struct {
	BaseURL *string `json:"base_url"`
}

type jsoncTranscribe struct {
	TimeoutMS  *int    `json:"timeout_ms"`
	ScratchDir *string `json:"scratch_dir"`
}

type jsoncTranscript struct {
	TrailingSpace *bool `json:"trailing_space"`
}

type jsoncStore struct {
	Path *string `json:"path"`
}

type jsoncTray struct {
	Enable *bool `json:"enable"`
}

type jsoncLog struct {
	Level *string `json:"level"`
}

type jsoncDebug struct {
	AudioDump *bool `json:"audio_dump"`
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	var payload jsoncConfig
	if err := decodeStrict(normalized, &payload); err != nil {
		return Config{}, nil, err
	}

	cfg := base
	warnings, err := payload.applyTo(&cfg)
	if err != nil {
		return Config{}, nil, err
	}

	validatedWarnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append(warnings, validatedWarnings...)
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if c := payload.Capture; c != nil {
		if c.Backend != nil {
			cfg.Capture.Backend = strings.ToLower(strings.TrimSpace(*c.Backend))
		}
		if c.Command != nil {
			cfg.Capture.Command = strings.TrimSpace(*c.Command)
		}
		if c.InputFormat != nil {
			cfg.Capture.InputFormat = strings.TrimSpace(*c.InputFormat)
		}
		if c.Input != nil {
			cfg.Capture.Input = *c.Input
		}
		if c.Fallback != nil {
			cfg.Capture.Fallback = *c.Fallback
		}
		if c.SampleRate != nil {
			cfg.Capture.SampleRate = *c.SampleRate
		}
	}

	if payload.Paste != nil && payload.Paste.Enable != nil {
		cfg.Paste.Enable = *payload.Paste.Enable
	}

	if ind := payload.Indicator; ind != nil {
		if ind.Enable != nil {
			cfg.Indicator.Enable = *ind.Enable
		}
		if ind.AppName != nil {
			cfg.Indicator.AppName = strings.TrimSpace(*ind.AppName)
		}
		if ind.SoundEnable != nil {
			cfg.Indicator.SoundEnable = *ind.SoundEnable
		}
		if ind.SoundStartFile != nil {
			cfg.Indicator.SoundStartFile = strings.TrimSpace(*ind.SoundStartFile)
		}
		if ind.SoundStopFile != nil {
			cfg.Indicator.SoundStopFile = strings.TrimSpace(*ind.SoundStopFile)
		}
		if ind.SoundCompleteFile != nil {
			cfg.Indicator.SoundCompleteFile = strings.TrimSpace(*ind.SoundCompleteFile)
		}
		if ind.SoundCancelFile != nil {
			cfg.Indicator.SoundCancelFile = strings.TrimSpace(*ind.SoundCancelFile)
		}
		if ind.ErrorTimeoutMS != nil {
			cfg.Indicator.ErrorTimeoutMS = *ind.ErrorTimeoutMS
		}
	}

	if p := payload.Providers; p != nil {
		if p.OpenAI != nil && p.OpenAI.BaseURL != nil {
			cfg.Providers.OpenAIBaseURL = strings.TrimSpace(*p.OpenAI.BaseURL)
		}
		if p.Groq != nil && p.Groq.BaseURL != nil {
			cfg.Providers.GroqBaseURL = strings.TrimSpace(*p.Groq.BaseURL)
		}
	}

	if tr := payload.Transcribe; tr != nil {
		if tr.TimeoutMS != nil {
			cfg.Transcribe.TimeoutMS = *tr.TimeoutMS
		}
		if tr.ScratchDir != nil {
			cfg.Transcribe.ScratchDir = strings.TrimSpace(*tr.ScratchDir)
		}
	}

	if payload.Transcript != nil && payload.Transcript.TrailingSpace != nil {
		cfg.Transcript.TrailingSpace = *payload.Transcript.TrailingSpace
	}

	if payload.Store != nil && payload.Store.Path != nil {
		cfg.Store.Path = strings.TrimSpace(*payload.Store.Path)
	}

	if payload.Tray != nil && payload.Tray.Enable != nil {
		cfg.Tray.Enable = *payload.Tray.Enable
	}

	if payload.Log != nil && payload.Log.Level != nil {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(*payload.Log.Level))
	}

	if payload.ClipboardCmd != nil {
		cmd, err := ParseCommand(*payload.ClipboardCmd)
		if err != nil {
			return nil, fmt.Errorf("invalid clipboard_cmd: %w", err)
		}
		cfg.Clipboard = cmd
	}

	if payload.PasteCmd != nil {
		cmd, err := ParseCommand(*payload.PasteCmd)
		if err != nil {
			return nil, fmt.Errorf("invalid paste_cmd: %w", err)
		}
		cfg.PasteCmd = cmd
	}

	if payload.Debug != nil && payload.Debug.AudioDump != nil {
		cfg.Debug.EnableAudioDump = *payload.Debug.AudioDump
	}

	return warnings, nil
}
