package indicator

import (
	"os"
	"strings"
)

type locale string

const (
	localeEnglish locale = "en"
)

// Messages are the user-visible status strings shared by every surface.
type Messages struct {
	Recording    string
	Processing   string
	Transcribing string
	Ready        string
	Cancelled    string
	MissingKey   string
	ErrorText    string
}

// MessagesFromEnv resolves status strings for the current $LANG.
func MessagesFromEnv() Messages {
	return indicatorMessages(resolveLocale(os.Getenv("LANG")))
}

func resolveLocale(raw string) locale {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(raw, "en") {
		return localeEnglish
	}
	return localeEnglish
}

func indicatorMessages(tag locale) Messages {
	switch tag {
	case localeEnglish:
		fallthrough
	default:
		return Messages{
			Recording:    "Recording…",
			Processing:   "Processing…",
			Transcribing: "Transcribing…",
			Ready:        "Ready",
			Cancelled:    "Cancelled",
			MissingKey:   "Please set your API key",
			ErrorText:    "Speech recognition error",
		}
	}
}
