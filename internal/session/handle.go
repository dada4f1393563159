package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/alphavoice/alphavoice/internal/audio"
	"github.com/alphavoice/alphavoice/internal/fsm"
	"github.com/alphavoice/alphavoice/internal/ipc"
)

// Handle serves IPC commands for the owner process.
func (c *Controller) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.CommandStatus:
		return c.status(ctx)
	case ipc.CommandToggle:
		return c.requestToggle()
	case ipc.CommandCancel:
		return c.requestCancel()
	case ipc.CommandStats:
		return c.stats(ctx)
	case ipc.CommandSubmit:
		return c.requestSubmit(req.AudioPath)
	default:
		return ipc.Response{OK: false, State: string(c.State()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

func (c *Controller) status(ctx context.Context) ipc.Response {
	live := c.Settings()
	resp := ipc.Response{
		OK:       true,
		State:    string(c.State()),
		Message:  "status",
		Provider: live.Provider.Name(),
		Hotkey:   live.Hotkey,
	}
	if c.accountant != nil {
		if total, err := c.accountant.Total(ctx); err == nil {
			resp.TotalWords = total
		}
	}
	return resp
}

func (c *Controller) stats(ctx context.Context) ipc.Response {
	state := c.State()
	if c.accountant == nil {
		return ipc.Response{OK: false, State: string(state), Error: "word count is not available"}
	}
	total, err := c.accountant.Total(ctx)
	if err != nil {
		return ipc.Response{OK: false, State: string(state), Error: err.Error()}
	}
	return ipc.Response{OK: true, State: string(state), Message: "stats", TotalWords: total}
}

// requestToggle enqueues a toggle unless a transcription is in flight.
func (c *Controller) requestToggle() ipc.Response {
	state := c.State()
	if state == fsm.StateProcessing {
		return ipc.Response{OK: false, State: string(state), Error: "already processing"}
	}
	if !c.post(event{kind: eventToggle}) {
		return ipc.Response{OK: false, State: string(state), Error: "session loop stopped"}
	}
	return ipc.Response{OK: true, State: string(state), Message: "toggle requested"}
}

// requestCancel enqueues a cancel action when state permits it.
func (c *Controller) requestCancel() ipc.Response {
	state := c.State()
	if state == fsm.StateProcessing {
		return ipc.Response{OK: false, State: string(state), Error: "cannot cancel while processing"}
	}
	if err := c.Cancel(); err != nil {
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot cancel from state %s", state)}
	}
	return ipc.Response{OK: true, State: string(state), Message: "cancel requested"}
}

// requestSubmit transcribes an existing audio file through the normal session flow.
func (c *Controller) requestSubmit(path string) ipc.Response {
	state := c.State()
	path = strings.TrimSpace(path)
	if path == "" {
		return ipc.Response{OK: false, State: string(state), Error: "submit requires audio_path"}
	}
	if state != fsm.StateIdle {
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot submit from state %s", state)}
	}
	clip, err := audio.ReadClip(path)
	if err != nil {
		return ipc.Response{OK: false, State: string(state), Error: err.Error()}
	}
	c.DeliverAudio(clip)
	return ipc.Response{OK: true, State: string(state), Message: "submitted"}
}
