// Package session coordinates dictation lifecycle state, actions, and commit flow.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/alphavoice/alphavoice/internal/audio"
	"github.com/alphavoice/alphavoice/internal/fsm"
	"github.com/alphavoice/alphavoice/internal/indicator"
	"github.com/alphavoice/alphavoice/internal/settings"
	"github.com/alphavoice/alphavoice/internal/transcribe"
	"github.com/alphavoice/alphavoice/internal/transcript"
)

var (
	// ErrNoActiveSession indicates a cancel arrived while nothing was recording.
	ErrNoActiveSession = errors.New("no active recording")
	// ErrAlreadyRunning indicates Run was invoked twice on one controller.
	ErrAlreadyRunning = errors.New("session controller already running")
)

const eventBuffer = 16

// Result is the complete lifecycle output of one dictation session.
type Result struct {
	SessionID     string
	State         fsm.State
	Transcript    string
	WordsAdded    int64
	TotalWords    int64
	Provider      string
	Cancelled     bool
	Err           error
	AudioDevice   string
	BytesCaptured int64
	Latency       time.Duration
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Deps are the collaborators a controller drives.
type Deps struct {
	Logger      *slog.Logger
	Capture     audio.Recorder
	Transcriber Transcriber
	Committer   Committer
	Accountant  Accountant
	Presenter   indicator.Presenter
	Transcript  transcript.Options
	OnResult    func(Result)
}

type activeSession struct {
	seq      uint64
	snapshot settings.Settings
	result   Result
}

// Controller owns the session state. Run is the only goroutine that changes
// it; every other entry point posts an event.
type Controller struct {
	logger     *slog.Logger
	capture    audio.Recorder
	transcribe Transcriber
	commit     Committer
	accountant Accountant
	presenter  indicator.Presenter
	formatting transcript.Options
	onResult   func(Result)
	messages   indicator.Messages

	events  chan event
	done    chan struct{}
	running atomic.Bool

	mu             sync.RWMutex
	state          fsm.State
	live           settings.Settings
	lastTranscript string

	// Owned by the Run goroutine.
	seq    uint64
	active *activeSession
}

// NewController constructs a session controller with safe default fallbacks.
func NewController(deps Deps, initial settings.Settings) *Controller {
	if deps.Committer == nil {
		deps.Committer = CommitFunc(func(context.Context, string) error { return nil })
	}
	if deps.Presenter == nil {
		deps.Presenter = indicator.Noop{}
	}

	return &Controller{
		logger:     deps.Logger,
		capture:    deps.Capture,
		transcribe: deps.Transcriber,
		commit:     deps.Committer,
		accountant: deps.Accountant,
		presenter:  deps.Presenter,
		formatting: deps.Transcript,
		onResult:   deps.OnResult,
		messages:   indicator.MessagesFromEnv(),
		events:     make(chan event, eventBuffer),
		done:       make(chan struct{}),
		state:      fsm.StateIdle,
		live:       initial,
	}
}

// State returns the current FSM state snapshot.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Settings returns the live settings that the next session will snapshot.
func (c *Controller) Settings() settings.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.live
}

// LastTranscript returns the most recently committed transcript.
func (c *Controller) LastTranscript() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastTranscript
}

// Toggle starts or stops recording. Presses while processing are ignored.
func (c *Controller) Toggle() {
	c.post(event{kind: eventToggle})
}

// Cancel discards the active recording.
func (c *Controller) Cancel() error {
	if c.State() != fsm.StateRecording {
		return ErrNoActiveSession
	}
	c.post(event{kind: eventCancel})
	return nil
}

// DeliverAudio transcribes an externally supplied clip as a new session.
func (c *Controller) DeliverAudio(clip audio.Clip) {
	c.post(event{kind: eventAudioReady, clip: clip})
}

// UpdateSettings replaces the live settings. An in-flight session keeps the
// snapshot it started with.
func (c *Controller) UpdateSettings(s settings.Settings) {
	c.post(event{kind: eventSettingsChanged, settings: s})
}

// Run processes events until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(c.done)
	defer c.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-c.events:
			c.dispatch(ctx, ev)
		}
	}
}

// post enqueues ev unless the loop has exited.
func (c *Controller) post(ev event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

// dispatch handles one event; a panic unwinds the session to idle.
func (c *Controller) dispatch(ctx context.Context, ev event) {
	defer func() {
		if r := recover(); r != nil {
			c.logError("session handler panic", "event", ev.kind.String(), "panic", fmt.Sprint(r))
			c.fail(ctx, fmt.Errorf("session handler panic: %v", r), c.messages.ErrorText)
		}
	}()

	if ev.seq != 0 && (c.active == nil || c.active.seq != ev.seq) {
		c.logDebug("stale session event dropped", "event", ev.kind.String())
		return
	}

	switch ev.kind {
	case eventToggle:
		c.onToggle(ctx)
	case eventCancel:
		c.onCancel(ctx)
	case eventAudioReady:
		c.onAudio(ctx, ev)
	case eventCaptureFailed:
		c.fail(ctx, ev.err, stopErrorMessage(ev.err))
	case eventTranscriptionDone:
		c.onTranscription(ctx, ev)
	case eventSettingsChanged:
		c.mu.Lock()
		c.live = ev.settings
		c.mu.Unlock()
		c.logDebug("settings updated", "provider", ev.settings.Provider.Name(), "hotkey", ev.settings.Hotkey)
	default:
		c.logError("unknown session event", "event", int(ev.kind))
	}
}

func (c *Controller) onToggle(ctx context.Context) {
	switch state := c.State(); state {
	case fsm.StateIdle:
		c.startRecording(ctx)
	case fsm.StateRecording:
		c.stopRecording(ctx)
	default:
		if _, err := fsm.Transition(state, fsm.EventToggle); errors.Is(err, fsm.ErrBusy) {
			c.logDebug("toggle ignored while processing")
			return
		} else if err != nil {
			c.logError("toggle rejected", "error", err.Error())
		}
	}
}

func (c *Controller) startRecording(ctx context.Context) {
	if err := c.transition(fsm.EventToggle); err != nil {
		c.logError("start rejected", "error", err.Error())
		return
	}
	c.begin()

	c.presenter.RecordingStarted(ctx)
	if c.capture == nil {
		c.fail(ctx, errors.New("no capture backend configured"), c.messages.ErrorText)
		return
	}
	if err := c.capture.Start(ctx); err != nil {
		c.fail(ctx, err, captureErrorMessage(err))
		return
	}
	c.logDebug("recording started", "session_id", c.active.result.SessionID)
}

func (c *Controller) stopRecording(ctx context.Context) {
	if err := c.transition(fsm.EventToggle); err != nil {
		c.fail(ctx, err, c.messages.ErrorText)
		return
	}
	c.presenter.RecordingStopped(ctx)
	c.presenter.StatusUpdate(ctx, c.messages.Processing)

	seq := c.active.seq
	capture := c.capture
	go func() {
		clip, err := capture.Stop(ctx)
		if err != nil {
			c.post(event{kind: eventCaptureFailed, seq: seq, err: err})
			return
		}
		c.post(event{kind: eventAudioReady, seq: seq, clip: clip})
	}()
}

func (c *Controller) onCancel(ctx context.Context) {
	if c.State() != fsm.StateRecording {
		c.logDebug("cancel ignored", "state", string(c.State()))
		return
	}
	if err := c.transition(fsm.EventCancel); err != nil {
		c.fail(ctx, err, c.messages.ErrorText)
		return
	}
	if err := c.capture.Cancel(ctx); err != nil {
		c.logWarn("capture cancel failed", "error", err.Error())
	}
	c.presenter.RecordingCancelled(ctx)
	c.active.result.Cancelled = true
	c.finish()
}

func (c *Controller) onAudio(ctx context.Context, ev event) {
	if ev.seq == 0 {
		// External clip: only an idle controller can take it.
		if c.State() != fsm.StateIdle {
			c.logWarn("external audio rejected", "state", string(c.State()))
			return
		}
		if err := c.transition(fsm.EventToggle); err != nil {
			c.logError("external audio rejected", "error", err.Error())
			return
		}
		c.begin()
	}
	if err := c.transition(fsm.EventAudio); err != nil {
		c.fail(ctx, err, c.messages.ErrorText)
		return
	}

	active := c.active
	active.result.BytesCaptured = int64(len(ev.clip.Data))
	active.result.AudioDevice = ev.clip.Device
	c.presenter.StatusUpdate(ctx, c.messages.Transcribing)

	if !active.snapshot.HasAPIKey() {
		c.fail(ctx, transcribe.ErrMissingAPIKey, c.messages.MissingKey)
		return
	}
	if c.transcribe == nil {
		c.fail(ctx, errors.New("no transcriber configured"), c.messages.ErrorText)
		return
	}

	seq := active.seq
	req := active.snapshot.Request()
	transcriber := c.transcribe
	clip := ev.clip
	go func() {
		started := time.Now()
		text, err := safeTranscribe(ctx, transcriber, clip, req)
		c.post(event{kind: eventTranscriptionDone, seq: seq, text: text, err: err, latency: time.Since(started)})
	}()
}

func (c *Controller) onTranscription(ctx context.Context, ev event) {
	active := c.active
	active.result.Latency = ev.latency
	if ev.err != nil {
		c.fail(ctx, ev.err, ev.err.Error())
		return
	}

	text := transcript.Normalize(ev.text, c.formatting)
	if text == "" {
		c.presenter.StatusUpdate(ctx, c.messages.Ready)
		c.complete(ctx)
		return
	}
	active.result.Transcript = text

	if err := c.commit.Commit(ctx, text); err != nil {
		c.fail(ctx, fmt.Errorf("commit transcript: %w", err), err.Error())
		return
	}
	c.mu.Lock()
	c.lastTranscript = text
	c.mu.Unlock()

	if c.accountant != nil {
		entry, err := c.accountant.Record(ctx, text)
		if err != nil {
			c.logWarn("word count update failed", "error", err.Error())
		} else {
			active.result.WordsAdded = entry.Added
			active.result.TotalWords = entry.Total
			c.presenter.StatsUpdate(ctx, entry.Total)
		}
	}

	c.presenter.StatusUpdate(ctx, c.messages.Ready)
	c.complete(ctx)
}

// safeTranscribe converts a panicking transcriber into an error.
func safeTranscribe(ctx context.Context, t Transcriber, clip audio.Clip, req transcribe.Request) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("transcription panic: %v", r)
		}
	}()
	return t.Transcribe(ctx, clip, req)
}

// begin opens a new session and freezes the settings it will run with.
func (c *Controller) begin() {
	c.seq++
	snapshot := c.Settings()
	c.active = &activeSession{
		seq:      c.seq,
		snapshot: snapshot,
		result: Result{
			SessionID: uuid.NewString(),
			Provider:  snapshot.Provider.Name(),
			StartedAt: time.Now(),
		},
	}
}

func (c *Controller) complete(ctx context.Context) {
	if err := c.transition(fsm.EventTranscribed); err != nil {
		c.fail(ctx, err, c.messages.ErrorText)
		return
	}
	c.finish()
}

// fail unwinds any state to idle and surfaces msg.
func (c *Controller) fail(ctx context.Context, err error, msg string) {
	wasRecording := c.State() == fsm.StateRecording
	if wasRecording && c.capture != nil {
		if cancelErr := c.capture.Cancel(context.WithoutCancel(ctx)); cancelErr != nil && !errors.Is(cancelErr, audio.ErrNotRecording) {
			c.logWarn("capture cancel failed", "error", cancelErr.Error())
		}
	}
	_ = c.transition(fsm.EventFail)

	if c.active != nil {
		c.active.result.Err = err
	}

	if wasRecording {
		c.present("RecordingStopped", func() { c.presenter.RecordingStopped(ctx) })
	}
	c.present("Error", func() { c.presenter.Error(ctx, msg) })
	c.finish()
}

// present runs one presenter call on the failure path. The state is already
// idle here, so a panicking surface is logged and swallowed.
func (c *Controller) present(call string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logError("presenter panic", "call", call, "panic", fmt.Sprint(r))
		}
	}()
	fn()
}

func (c *Controller) finish() {
	active := c.active
	c.active = nil
	if active == nil {
		return
	}

	result := active.result
	result.State = c.State()
	result.FinishedAt = time.Now()
	c.logResult(result)
	if c.onResult != nil {
		c.onResult(result)
	}
}

// shutdown releases an in-progress recording when the loop exits.
func (c *Controller) shutdown() {
	if c.State() == fsm.StateIdle {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c.fail(ctx, context.Canceled, c.messages.Cancelled)
}

// transition applies one FSM event to the controller state.
func (c *Controller) transition(event fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

func captureErrorMessage(err error) string {
	if errors.Is(err, audio.ErrPermissionDenied) {
		return "Microphone access denied"
	}
	return "Unable to start recording: " + err.Error()
}

func stopErrorMessage(err error) string {
	if errors.Is(err, audio.ErrPermissionDenied) {
		return "Microphone access denied"
	}
	return "Recording failed: " + err.Error()
}

func (c *Controller) logResult(result Result) {
	if c.logger == nil {
		return
	}
	attrs := []any{
		"session_id", result.SessionID,
		"state", string(result.State),
		"provider", result.Provider,
		"cancelled", result.Cancelled,
		"words_added", result.WordsAdded,
		"total_words", result.TotalWords,
		"transcript_chars", len(result.Transcript),
		"audio_device", result.AudioDevice,
		"bytes_captured", result.BytesCaptured,
		"latency_ms", result.Latency.Milliseconds(),
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
	}
	if result.Err != nil {
		c.logger.Error("session failed", append(attrs, "error", result.Err.Error())...)
		return
	}
	c.logger.Info("session complete", attrs...)
}

func (c *Controller) logDebug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Controller) logWarn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func (c *Controller) logError(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Error(msg, args...)
	}
}
