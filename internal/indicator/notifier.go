package indicator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/alphavoice/alphavoice/internal/config"
)

var errOutboxFull = errors.New("notification queue full")

const (
	cueTimeout = 4 * time.Second
	outboxSize = 16
)

// Notifier presents session events as desktop notifications and audio cues.
type Notifier struct {
	cfg      config.IndicatorConfig
	logger   *slog.Logger
	messages Messages

	notify func(title string, message string) error
	cue    func(ctx context.Context, kind cueKind) error
	now    func() time.Time

	visible atomic.Bool

	outbox      chan string
	outboxStart sync.Once
	pending     sync.WaitGroup

	mu          sync.Mutex
	lastError   string
	lastErrorAt time.Time
	soundMu     sync.Mutex
}

// NewNotifier creates a notifier; visible mirrors the user's show-indicator setting.
func NewNotifier(cfg config.IndicatorConfig, visible bool, logger *slog.Logger) *Notifier {
	n := &Notifier{
		cfg:      cfg,
		logger:   logger,
		messages: MessagesFromEnv(),
		notify: func(title string, message string) error {
			return beeep.Notify(title, message, "")
		},
		now:    time.Now,
		outbox: make(chan string, outboxSize),
	}
	n.cue = func(ctx context.Context, kind cueKind) error {
		return emitCue(ctx, kind, n.cfg)
	}
	n.visible.Store(visible)
	return n
}

// SetVisible toggles recording/status notifications. Errors are always shown.
func (n *Notifier) SetVisible(visible bool) {
	n.visible.Store(visible)
}

// Visible reports whether recording/status notifications are shown.
func (n *Notifier) Visible() bool {
	return n.visible.Load()
}

func (n *Notifier) RecordingStarted(context.Context) {
	n.playCue(cueStart)
	n.show(n.messages.Recording)
}

func (n *Notifier) RecordingStopped(context.Context) {
	n.playCue(cueStop)
}

func (n *Notifier) RecordingCancelled(context.Context) {
	n.playCue(cueCancel)
}

// StatusUpdate shows intermediate statuses; "Ready" is conveyed by the
// completion cue instead.
func (n *Notifier) StatusUpdate(_ context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" || text == n.messages.Ready {
		return
	}
	n.show(text)
}

// Error always notifies when the indicator is enabled. Identical messages
// inside the error timeout window are collapsed.
func (n *Notifier) Error(_ context.Context, msg string) {
	if !n.cfg.Enable {
		return
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = n.messages.ErrorText
	}

	now := n.now()
	window := time.Duration(n.cfg.ErrorTimeoutMS) * time.Millisecond
	n.mu.Lock()
	duplicate := msg == n.lastError && window > 0 && now.Sub(n.lastErrorAt) < window
	if !duplicate {
		n.lastError = msg
		n.lastErrorAt = now
	}
	n.mu.Unlock()
	if duplicate {
		return
	}

	n.dispatch(msg)
}

// StatsUpdate fires only after a successful commit, so it carries the completion cue.
func (n *Notifier) StatsUpdate(context.Context, int64) {
	n.playCue(cueComplete)
}

func (n *Notifier) show(text string) {
	if !n.cfg.Enable || !n.visible.Load() {
		return
	}
	n.dispatch(text)
}

// dispatch queues text for the delivery goroutine. Notifications are sent in
// order; when the queue is full the newest one is dropped.
func (n *Notifier) dispatch(text string) {
	n.outboxStart.Do(func() { go n.deliver() })
	n.pending.Add(1)
	select {
	case n.outbox <- text:
	default:
		n.pending.Done()
		n.log("indicator notification dropped", errOutboxFull)
	}
}

func (n *Notifier) deliver() {
	for text := range n.outbox {
		if err := n.notify(n.cfg.AppName, text); err != nil {
			n.log("indicator dispatch failed", err)
		}
		n.pending.Done()
	}
}

// flush waits until every queued notification has been handed to notify.
func (n *Notifier) flush() {
	n.pending.Wait()
}

// playCue serializes cue playback and emits audio asynchronously.
func (n *Notifier) playCue(kind cueKind) {
	if !n.cfg.SoundEnable {
		return
	}
	go func() {
		n.soundMu.Lock()
		defer n.soundMu.Unlock()
		ctx, cancel := context.WithTimeout(context.Background(), cueTimeout)
		defer cancel()
		if err := n.cue(ctx, kind); err != nil {
			n.log("indicator audio cue failed", err)
		}
	}()
}

// log emits debug-only indicator failures to the runtime logger.
func (n *Notifier) log(message string, err error) {
	if n.logger == nil || err == nil {
		return
	}
	n.logger.Debug(message, "error", err.Error())
}
