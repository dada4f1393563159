//go:build darwin

package hotkey

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"
)

// OSBackend registers shortcuts through the macOS Carbon hotkey API.
type OSBackend struct{}

func NewOSBackend() Backend {
	return OSBackend{}
}

func (OSBackend) Register(b Binding, onPress func()) (Registration, error) {
	mods := make([]hotkey.Modifier, 0, len(b.Modifiers))
	for _, mod := range b.Modifiers {
		switch mod {
		case ModControl:
			mods = append(mods, hotkey.ModCtrl)
		case ModOption:
			mods = append(mods, hotkey.ModOption)
		case ModShift:
			mods = append(mods, hotkey.ModShift)
		case ModCommand:
			mods = append(mods, hotkey.ModCmd)
		}
	}
	key, ok := keyCodes[b.Key]
	if !ok {
		return nil, fmt.Errorf("unsupported key %q", b.Key)
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, err
	}

	reg := &osRegistration{hk: hk, done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-reg.done:
				return
			case <-hk.Keydown():
				if onPress != nil {
					onPress()
				}
			}
		}
	}()
	return reg, nil
}

type osRegistration struct {
	hk   *hotkey.Hotkey
	done chan struct{}
	once sync.Once
}

func (r *osRegistration) Unregister() error {
	var err error
	r.once.Do(func() {
		close(r.done)
		err = r.hk.Unregister()
	})
	return err
}

var keyCodes = map[string]hotkey.Key{
	"Space": hotkey.KeySpace, "Return": hotkey.KeyReturn, "Escape": hotkey.KeyEscape,
	"Tab": hotkey.KeyTab, "Delete": hotkey.KeyDelete,
	"Left": hotkey.KeyLeft, "Right": hotkey.KeyRight, "Up": hotkey.KeyUp, "Down": hotkey.KeyDown,
	"A": hotkey.KeyA, "B": hotkey.KeyB, "C": hotkey.KeyC, "D": hotkey.KeyD, "E": hotkey.KeyE,
	"F": hotkey.KeyF, "G": hotkey.KeyG, "H": hotkey.KeyH, "I": hotkey.KeyI, "J": hotkey.KeyJ,
	"K": hotkey.KeyK, "L": hotkey.KeyL, "M": hotkey.KeyM, "N": hotkey.KeyN, "O": hotkey.KeyO,
	"P": hotkey.KeyP, "Q": hotkey.KeyQ, "R": hotkey.KeyR, "S": hotkey.KeyS, "T": hotkey.KeyT,
	"U": hotkey.KeyU, "V": hotkey.KeyV, "W": hotkey.KeyW, "X": hotkey.KeyX, "Y": hotkey.KeyY,
	"Z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3, "4": hotkey.Key4,
	"5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7, "8": hotkey.Key8, "9": hotkey.Key9,
	"F1": hotkey.KeyF1, "F2": hotkey.KeyF2, "F3": hotkey.KeyF3, "F4": hotkey.KeyF4,
	"F5": hotkey.KeyF5, "F6": hotkey.KeyF6, "F7": hotkey.KeyF7, "F8": hotkey.KeyF8,
	"F9": hotkey.KeyF9, "F10": hotkey.KeyF10, "F11": hotkey.KeyF11, "F12": hotkey.KeyF12,
}
