package session

import (
	"time"

	"github.com/alphavoice/alphavoice/internal/audio"
	"github.com/alphavoice/alphavoice/internal/settings"
)

type eventKind int

const (
	eventToggle eventKind = iota + 1
	eventCancel
	eventAudioReady
	eventCaptureFailed
	eventTranscriptionDone
	eventSettingsChanged
)

func (k eventKind) String() string {
	switch k {
	case eventToggle:
		return "toggle"
	case eventCancel:
		return "cancel"
	case eventAudioReady:
		return "audio-ready"
	case eventCaptureFailed:
		return "capture-failed"
	case eventTranscriptionDone:
		return "transcription-done"
	case eventSettingsChanged:
		return "settings-changed"
	default:
		return "unknown"
	}
}

// event is one input to the controller loop. seq ties results of background
// work to the session that started it; 0 marks an external event.
type event struct {
	kind     eventKind
	seq      uint64
	clip     audio.Clip
	text     string
	err      error
	latency  time.Duration
	settings settings.Settings
}
