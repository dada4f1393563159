//go:build darwin

package tray

import (
	"context"

	"github.com/getlantern/systray"
)

type menu struct {
	status *systray.MenuItem
	words  *systray.MenuItem
	toggle *systray.MenuItem
	copy   *systray.MenuItem
	quit   *systray.MenuItem
}

// Run hosts body under the macOS status bar loop. It must be called on the
// main thread and returns once body returns or Quit is clicked.
func Run(ctx context.Context, opts Options, body func(context.Context, *Tray) error) error {
	t := New(opts)
	if !opts.Enabled {
		return body(ctx, t)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 1)

	systray.Run(func() {
		m := buildMenu(opts.AppName)
		t.setRenderer(m.render)
		go m.loop(ctx, t.opts, cancel)
		go func() {
			errCh <- body(ctx, t)
			systray.Quit()
		}()
	}, cancel)

	return <-errCh
}

func buildMenu(appName string) *menu {
	header := systray.AddMenuItem(appName, appName)
	header.Disable()
	m := &menu{}
	m.status = systray.AddMenuItem("", "Current status")
	m.status.Disable()
	m.words = systray.AddMenuItem("", "Words dictated")
	m.words.Disable()
	systray.AddSeparator()
	m.toggle = systray.AddMenuItem("Start recording", "Toggle dictation")
	m.copy = systray.AddMenuItem("Copy last transcript", "Copy the most recent transcript to the clipboard")
	systray.AddSeparator()
	m.quit = systray.AddMenuItem("Quit", "Quit "+appName)
	return m
}

func (m *menu) render(v View) {
	systray.SetTitle(v.Title)
	systray.SetTooltip(v.Tooltip)
	m.status.SetTitle(v.Status)
	m.words.SetTitle(v.Words)
	m.toggle.SetTitle(v.ToggleLabel)
}

func (m *menu) loop(ctx context.Context, opts Options, quit context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.toggle.ClickedCh:
			call(opts.OnToggle)
		case <-m.copy.ClickedCh:
			call(opts.OnCopyLast)
		case <-m.quit.ClickedCh:
			quit()
			return
		}
	}
}
