// Package indicator handles visual state notifications and audio cue playback.
package indicator

import (
	"context"
	"sync"
)

// Presenter is the session-facing presentation contract. Implementations
// must not block the caller for long; slow work belongs in a goroutine.
type Presenter interface {
	RecordingStarted(context.Context)
	RecordingStopped(context.Context)
	RecordingCancelled(context.Context)
	StatusUpdate(context.Context, string)
	Error(context.Context, string)
	StatsUpdate(context.Context, int64)
}

// Broadcaster fans every presentation event out to all attached surfaces.
type Broadcaster struct {
	mu       sync.RWMutex
	surfaces []Presenter
}

// NewBroadcaster returns a broadcaster seeded with surfaces; nil entries are skipped.
func NewBroadcaster(surfaces ...Presenter) *Broadcaster {
	b := &Broadcaster{}
	for _, s := range surfaces {
		b.Add(s)
	}
	return b
}

// Add attaches one more surface.
func (b *Broadcaster) Add(p Presenter) {
	if p == nil {
		return
	}
	b.mu.Lock()
	b.surfaces = append(b.surfaces, p)
	b.mu.Unlock()
}

func (b *Broadcaster) each(fn func(Presenter)) {
	b.mu.RLock()
	surfaces := append([]Presenter(nil), b.surfaces...)
	b.mu.RUnlock()
	for _, s := range surfaces {
		fn(s)
	}
}

func (b *Broadcaster) RecordingStarted(ctx context.Context) {
	b.each(func(p Presenter) { p.RecordingStarted(ctx) })
}

func (b *Broadcaster) RecordingStopped(ctx context.Context) {
	b.each(func(p Presenter) { p.RecordingStopped(ctx) })
}

func (b *Broadcaster) RecordingCancelled(ctx context.Context) {
	b.each(func(p Presenter) { p.RecordingCancelled(ctx) })
}

func (b *Broadcaster) StatusUpdate(ctx context.Context, text string) {
	b.each(func(p Presenter) { p.StatusUpdate(ctx, text) })
}

func (b *Broadcaster) Error(ctx context.Context, msg string) {
	b.each(func(p Presenter) { p.Error(ctx, msg) })
}

func (b *Broadcaster) StatsUpdate(ctx context.Context, total int64) {
	b.each(func(p Presenter) { p.StatsUpdate(ctx, total) })
}

// Noop discards every event.
type Noop struct{}

func (Noop) RecordingStarted(context.Context)     {}
func (Noop) RecordingStopped(context.Context)     {}
func (Noop) RecordingCancelled(context.Context)   {}
func (Noop) StatusUpdate(context.Context, string) {}
func (Noop) Error(context.Context, string)        {}
func (Noop) StatsUpdate(context.Context, int64)   {}
