package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphavoice/alphavoice/internal/audio"
	"github.com/alphavoice/alphavoice/internal/fsm"
	"github.com/alphavoice/alphavoice/internal/ipc"
	"github.com/alphavoice/alphavoice/internal/transcribe"
)

func toggleRequest() ipc.Request {
	return ipc.Request{Command: ipc.CommandToggle}
}

func TestHandleStatusAndUnknownCommand(t *testing.T) {
	h := newHarness(t, keyed(transcribe.Alternate))
	_, err := h.counter.AddWords(context.Background(), 7)
	require.NoError(t, err)

	status := h.ctrl.Handle(context.Background(), ipc.Request{Command: ipc.CommandStatus})
	require.True(t, status.OK)
	require.Equal(t, string(fsm.StateIdle), status.State)
	require.Equal(t, "groq", status.Provider)
	require.Equal(t, "Option+Space", status.Hotkey)
	require.Equal(t, int64(7), status.TotalWords)

	unknown := h.ctrl.Handle(context.Background(), ipc.Request{Command: "definitely-unknown"})
	require.False(t, unknown.OK)
	require.Contains(t, unknown.Error, "unknown command")
}

func TestHandleStats(t *testing.T) {
	h := newHarness(t, keyed(transcribe.Primary))
	_, err := h.counter.AddWords(context.Background(), 1234)
	require.NoError(t, err)

	resp := h.ctrl.Handle(context.Background(), ipc.Request{Command: ipc.CommandStats})
	require.True(t, resp.OK)
	require.Equal(t, int64(1234), resp.TotalWords)
}

func TestHandleToggleAndCancel(t *testing.T) {
	h := newHarness(t, keyed(transcribe.Primary))

	cancelFromIdle := h.ctrl.Handle(context.Background(), ipc.Request{Command: ipc.CommandCancel})
	require.False(t, cancelFromIdle.OK)
	require.Contains(t, cancelFromIdle.Error, "cannot cancel from state idle")

	toggle := h.ctrl.Handle(context.Background(), toggleRequest())
	require.True(t, toggle.OK)
	require.Equal(t, "toggle requested", toggle.Message)
	waitForState(t, h.ctrl, fsm.StateRecording)

	cancel := h.ctrl.Handle(context.Background(), ipc.Request{Command: ipc.CommandCancel})
	require.True(t, cancel.OK)
	require.True(t, h.nextResult(t).Cancelled)
}

func TestHandleSubmitTranscribesFile(t *testing.T) {
	h := newHarness(t, keyed(transcribe.Primary))

	path := filepath.Join(t.TempDir(), "clip.wav")
	wav := audio.EncodeWAV(make([]byte, 3200), 16000, 1)
	require.NoError(t, os.WriteFile(path, wav, 0o600))

	missing := h.ctrl.Handle(context.Background(), ipc.Request{Command: ipc.CommandSubmit})
	require.False(t, missing.OK)

	resp := h.ctrl.Handle(context.Background(), ipc.Request{Command: ipc.CommandSubmit, AudioPath: path})
	require.True(t, resp.OK)

	result := h.nextResult(t)
	require.NoError(t, result.Err)
	require.Equal(t, "hello world", result.Transcript)
	require.Equal(t, int64(len(wav)), result.BytesCaptured)
	require.Equal(t, int32(0), h.capture.starts.Load())

	h.transcriber.mu.Lock()
	defer h.transcriber.mu.Unlock()
	require.Len(t, h.transcriber.clips, 1)
	require.Equal(t, "wav", h.transcriber.clips[0].Ext())
	require.Equal(t, wav, h.transcriber.clips[0].Data)
}

func TestHandleSubmitRejectedWhileRecording(t *testing.T) {
	h := newHarness(t, keyed(transcribe.Primary))

	h.ctrl.Toggle()
	waitForState(t, h.ctrl, fsm.StateRecording)

	resp := h.ctrl.Handle(context.Background(), ipc.Request{Command: ipc.CommandSubmit, AudioPath: "/tmp/x.wav"})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "cannot submit from state recording")
}

func TestCommitFuncDelegates(t *testing.T) {
	called := false
	commit := CommitFunc(func(_ context.Context, transcript string) error {
		called = true
		require.Equal(t, "hello", transcript)
		return nil
	})

	require.NoError(t, commit.Commit(context.Background(), "hello"))
	require.True(t, called)
}
