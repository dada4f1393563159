package config

const (
	defaultClipboardCmd = "pbcopy"
	defaultPasteCmd     = `osascript -e 'tell application "System Events" to keystroke "v" using command down'`
)

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Capture: CaptureConfig{
			Backend:     "ffmpeg",
			Command:     "ffmpeg",
			InputFormat: "avfoundation",
			Input:       ":0",
			Fallback:    "default",
			SampleRate:  16000,
		},
		Paste:     PasteConfig{Enable: true},
		Clipboard: mustCommand(defaultClipboardCmd),
		PasteCmd:  mustCommand(defaultPasteCmd),
		Indicator: IndicatorConfig{
			Enable:         true,
			AppName:        "AlphaVoice",
			SoundEnable:    true,
			ErrorTimeoutMS: 1600,
		},
		Transcribe: TranscribeConfig{
			TimeoutMS: 120000,
		},
		Transcript: TranscriptConfig{},
		Tray:       TrayConfig{Enable: true},
		Log:        LogConfig{Level: "info"},
		Debug:      DebugConfig{},
	}
}
