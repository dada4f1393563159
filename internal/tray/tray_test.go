package tray

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/alphavoice/alphavoice/internal/indicator"
)

func newTestTray() *Tray {
	return New(Options{
		AppName:  "AlphaVoice",
		Hotkey:   "Option+Space",
		Language: language.English,
		Messages: indicator.MessagesFromEnv(),
	})
}

func TestTrayInitialView(t *testing.T) {
	tr := newTestTray()
	tr.SetTotal(1234)

	view := tr.View()
	require.Equal(t, titleIdle, view.Title)
	require.Equal(t, "Ready", view.Status)
	require.Equal(t, "1,234 words · 31 min saved", view.Words)
	require.Equal(t, "Start recording", view.ToggleLabel)
	require.Equal(t, "AlphaVoice - press Option+Space to dictate", view.Tooltip)
}

func TestTrayFollowsSessionEvents(t *testing.T) {
	tr := newTestTray()
	var rendered []View
	tr.setRenderer(func(v View) { rendered = append(rendered, v) })
	ctx := context.Background()

	tr.RecordingStarted(ctx)
	require.True(t, tr.View().Recording)
	require.Equal(t, titleRecording, tr.View().Title)
	require.Equal(t, "Stop recording", tr.View().ToggleLabel)

	tr.RecordingStopped(ctx)
	tr.StatusUpdate(ctx, "Transcribing…")
	tr.StatsUpdate(ctx, 2)
	tr.StatusUpdate(ctx, "Ready")

	view := tr.View()
	require.False(t, view.Recording)
	require.Equal(t, titleIdle, view.Title)
	require.Equal(t, "Ready", view.Status)
	require.Equal(t, "2 words · 0 min saved", view.Words)
	require.Len(t, rendered, 6)
}

func TestTrayErrorClearsRecording(t *testing.T) {
	tr := newTestTray()
	ctx := context.Background()

	tr.RecordingStarted(ctx)
	tr.Error(ctx, "Microphone access denied")

	view := tr.View()
	require.False(t, view.Recording)
	require.Equal(t, "Error: Microphone access denied", view.Status)
}

func TestTrayCancelAndHotkeyUpdate(t *testing.T) {
	tr := newTestTray()
	ctx := context.Background()

	tr.RecordingStarted(ctx)
	tr.RecordingCancelled(ctx)
	tr.SetHotkey("Control+Shift+D")

	view := tr.View()
	require.Equal(t, "Cancelled", view.Status)
	require.Equal(t, "AlphaVoice - press Control+Shift+D to dictate", view.Tooltip)
}

func TestCallToleratesNil(t *testing.T) {
	called := false
	call(nil)
	call(func() { called = true })
	require.True(t, called)
}
