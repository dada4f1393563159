// Package tray renders session state and the running word count in the menu bar.
package tray

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/alphavoice/alphavoice/internal/indicator"
	"github.com/alphavoice/alphavoice/internal/stats"
)

const (
	titleIdle      = "AV ●"
	titleRecording = "AV 🔴"
)

// Options configures the tray surface and its menu callbacks.
type Options struct {
	Enabled  bool
	AppName  string
	Hotkey   string
	Language language.Tag
	Messages indicator.Messages

	OnToggle   func()
	OnCopyLast func()
}

// View is one fully rendered tray state.
type View struct {
	Title       string
	Tooltip     string
	Status      string
	Words       string
	ToggleLabel string
	Recording   bool
}

// Tray is an indicator.Presenter backed by the menu bar. Without a native
// renderer attached it only tracks state.
type Tray struct {
	opts Options

	mu        sync.Mutex
	recording bool
	status    string
	total     int64
	hotkey    string
	render    func(View)
}

// New creates a tray model in the idle state.
func New(opts Options) *Tray {
	if strings.TrimSpace(opts.AppName) == "" {
		opts.AppName = "AlphaVoice"
	}
	if opts.Language == language.Und {
		opts.Language = language.English
	}
	return &Tray{
		opts:   opts,
		status: opts.Messages.Ready,
		hotkey: opts.Hotkey,
	}
}

// View returns the current rendered state.
func (t *Tray) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked()
}

// SetTotal seeds the word counter without a stats event.
func (t *Tray) SetTotal(total int64) {
	t.update(func() { t.total = total })
}

// SetHotkey refreshes the tooltip after a rebind.
func (t *Tray) SetHotkey(descriptor string) {
	t.update(func() { t.hotkey = descriptor })
}

func (t *Tray) RecordingStarted(context.Context) {
	t.update(func() {
		t.recording = true
		t.status = t.opts.Messages.Recording
	})
}

func (t *Tray) RecordingStopped(context.Context) {
	t.update(func() { t.recording = false })
}

func (t *Tray) RecordingCancelled(context.Context) {
	t.update(func() {
		t.recording = false
		t.status = t.opts.Messages.Cancelled
	})
}

func (t *Tray) StatusUpdate(_ context.Context, text string) {
	t.update(func() { t.status = text })
}

func (t *Tray) Error(_ context.Context, msg string) {
	t.update(func() {
		t.recording = false
		t.status = "Error: " + msg
	})
}

func (t *Tray) StatsUpdate(_ context.Context, total int64) {
	t.update(func() { t.total = total })
}

func (t *Tray) setRenderer(render func(View)) {
	t.mu.Lock()
	t.render = render
	view := t.viewLocked()
	t.mu.Unlock()
	if render != nil {
		render(view)
	}
}

func (t *Tray) update(fn func()) {
	t.mu.Lock()
	fn()
	view := t.viewLocked()
	render := t.render
	t.mu.Unlock()
	if render != nil {
		render(view)
	}
}

func (t *Tray) viewLocked() View {
	view := View{
		Title:       titleIdle,
		Status:      t.status,
		Words:       stats.Summary(t.total, t.opts.Language),
		ToggleLabel: "Start recording",
		Recording:   t.recording,
		Tooltip:     t.opts.AppName,
	}
	if t.recording {
		view.Title = titleRecording
		view.ToggleLabel = "Stop recording"
	}
	if hk := strings.TrimSpace(t.hotkey); hk != "" {
		view.Tooltip = t.opts.AppName + " - press " + hk + " to dictate"
	}
	return view
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
