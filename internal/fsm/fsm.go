// Package fsm defines the dictation session state machine.
package fsm

import (
	"errors"
	"fmt"
)

type State string

type Event string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateProcessing State = "processing"
)

const (
	EventToggle      Event = "toggle"
	EventAudio       Event = "audio"
	EventTranscribed Event = "transcribed"
	EventCancel      Event = "cancel"
	EventFail        Event = "fail"
)

// ErrBusy reports a toggle that arrived while a transcription is in flight.
// The state is left unchanged and the press is ignored.
var ErrBusy = errors.New("transcription in progress")

func Transition(current State, event Event) (State, error) {
	switch current {
	case StateIdle, StateRecording, StateProcessing:
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}

	if event == EventFail {
		return StateIdle, nil
	}

	switch current {
	case StateIdle:
		switch event {
		case EventToggle:
			return StateRecording, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRecording:
		switch event {
		case EventToggle, EventAudio:
			return StateProcessing, nil
		case EventCancel:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		switch event {
		case EventToggle:
			return current, ErrBusy
		case EventAudio:
			return current, nil
		case EventTranscribed:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
