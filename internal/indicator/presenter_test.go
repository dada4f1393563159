package indicator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingPresenter struct {
	events []string
}

func (r *recordingPresenter) RecordingStarted(context.Context)   { r.events = append(r.events, "started") }
func (r *recordingPresenter) RecordingStopped(context.Context)   { r.events = append(r.events, "stopped") }
func (r *recordingPresenter) RecordingCancelled(context.Context) { r.events = append(r.events, "cancelled") }
func (r *recordingPresenter) StatusUpdate(_ context.Context, text string) {
	r.events = append(r.events, "status:"+text)
}
func (r *recordingPresenter) Error(_ context.Context, msg string) {
	r.events = append(r.events, "error:"+msg)
}
func (r *recordingPresenter) StatsUpdate(context.Context, int64) { r.events = append(r.events, "stats") }

func TestBroadcasterFansOutInOrder(t *testing.T) {
	first := &recordingPresenter{}
	second := &recordingPresenter{}
	b := NewBroadcaster(first, nil)
	b.Add(second)
	b.Add(nil)
	ctx := context.Background()

	b.RecordingStarted(ctx)
	b.StatusUpdate(ctx, "Ready")
	b.Error(ctx, "boom")
	b.StatsUpdate(ctx, 3)
	b.RecordingStopped(ctx)
	b.RecordingCancelled(ctx)

	want := []string{"started", "status:Ready", "error:boom", "stats", "stopped", "cancelled"}
	require.Equal(t, want, first.events)
	require.Equal(t, want, second.events)
}

func TestNoopSatisfiesPresenter(t *testing.T) {
	var p Presenter = Noop{}
	p.RecordingStarted(context.Background())
	p.Error(context.Background(), "ignored")
}
