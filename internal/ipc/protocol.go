package ipc

import (
	"errors"
	"strings"
)

// Control channel commands understood by the owner process.
const (
	CommandStatus       = "status"
	CommandToggle       = "toggle"
	CommandCancel       = "cancel"
	CommandStats        = "stats"
	CommandSubmit       = "submit"
	CommandSaveSettings = "save-settings"
)

type Request struct {
	Command   string         `json:"command"`
	Settings  *SettingsPatch `json:"settings,omitempty"`
	AudioPath string         `json:"audio_path,omitempty"`
}

// SettingsPatch carries a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	APIKey        *string `json:"api_key,omitempty"`
	Provider      *string `json:"provider,omitempty"`
	Hotkey        *string `json:"hotkey,omitempty"`
	ShowIndicator *bool   `json:"show_indicator,omitempty"`
}

type Response struct {
	OK         bool   `json:"ok"`
	State      string `json:"state,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	TotalWords int64  `json:"total_words,omitempty"`
	Hotkey     string `json:"hotkey,omitempty"`
	Provider   string `json:"provider,omitempty"`
}

// Validate rejects requests that are malformed regardless of which owner
// answers them. Unknown commands are left to the handler.
func (r Request) Validate() error {
	switch strings.TrimSpace(r.Command) {
	case "":
		return errors.New("command is required")
	case CommandSubmit:
		if strings.TrimSpace(r.AudioPath) == "" {
			return errors.New("submit requires audio_path")
		}
	case CommandSaveSettings:
		if r.Settings == nil || r.Settings.empty() {
			return errors.New("save-settings requires at least one setting")
		}
	}
	return nil
}

func (p *SettingsPatch) empty() bool {
	return p.APIKey == nil && p.Provider == nil && p.Hotkey == nil && p.ShowIndicator == nil
}
