package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alphavoice/alphavoice/internal/audio"
	"github.com/alphavoice/alphavoice/internal/fsm"
	"github.com/alphavoice/alphavoice/internal/settings"
	"github.com/alphavoice/alphavoice/internal/stats"
	"github.com/alphavoice/alphavoice/internal/transcribe"
	"github.com/alphavoice/alphavoice/internal/transcript"
)

type fakeCapture struct {
	startErr error
	stopErr  error
	clip     audio.Clip

	starts  atomic.Int32
	stops   atomic.Int32
	cancels atomic.Int32
}

func (f *fakeCapture) Start(context.Context) error {
	f.starts.Add(1)
	return f.startErr
}

func (f *fakeCapture) Stop(context.Context) (audio.Clip, error) {
	f.stops.Add(1)
	if f.stopErr != nil {
		return audio.Clip{}, f.stopErr
	}
	if f.clip.Empty() {
		return audio.Clip{Data: []byte("RIFF-fake"), Format: "wav", Device: "fake-mic"}, nil
	}
	return f.clip, nil
}

func (f *fakeCapture) Cancel(context.Context) error {
	f.cancels.Add(1)
	return nil
}

type fakeTranscriber struct {
	mu       sync.Mutex
	requests []transcribe.Request
	clips    []audio.Clip
	text     string
	err      error
	gate     chan struct{}
	panicMsg string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, clip audio.Clip, req transcribe.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.clips = append(f.clips, clip)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.text, f.err
}

func (f *fakeTranscriber) calls() []transcribe.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]transcribe.Request(nil), f.requests...)
}

type fakePresenter struct {
	mu       sync.Mutex
	events   []string
	errors   []string
	statuses []string
	totals   []int64
}

func (p *fakePresenter) record(ev string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *fakePresenter) RecordingStarted(context.Context)   { p.record("started") }
func (p *fakePresenter) RecordingStopped(context.Context)   { p.record("stopped") }
func (p *fakePresenter) RecordingCancelled(context.Context) { p.record("cancelled") }

func (p *fakePresenter) StatusUpdate(_ context.Context, text string) {
	p.mu.Lock()
	p.statuses = append(p.statuses, text)
	p.mu.Unlock()
	p.record("status:" + text)
}

func (p *fakePresenter) Error(_ context.Context, msg string) {
	p.mu.Lock()
	p.errors = append(p.errors, msg)
	p.mu.Unlock()
	p.record("error:" + msg)
}

func (p *fakePresenter) StatsUpdate(_ context.Context, total int64) {
	p.mu.Lock()
	p.totals = append(p.totals, total)
	p.mu.Unlock()
	p.record("stats")
}

func (p *fakePresenter) snapshot() (events []string, errs []string, totals []int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...), append([]string(nil), p.errors...), append([]int64(nil), p.totals...)
}

type memCounter struct {
	mu    sync.Mutex
	total int64
	err   error
}

func (m *memCounter) AddWords(_ context.Context, n int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.total += n
	return m.total, nil
}

func (m *memCounter) TotalWords(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total, m.err
}

type harness struct {
	ctrl        *Controller
	capture     *fakeCapture
	transcriber *fakeTranscriber
	presenter   *fakePresenter
	counter     *memCounter
	results     chan Result

	commitMu  sync.Mutex
	committed []string
	commitErr error
}

type harnessOption func(*harness, *Deps)

func newHarness(t *testing.T, initial settings.Settings, opts ...harnessOption) *harness {
	t.Helper()

	h := &harness{
		capture:     &fakeCapture{},
		transcriber: &fakeTranscriber{text: "hello world"},
		presenter:   &fakePresenter{},
		counter:     &memCounter{},
		results:     make(chan Result, 16),
	}
	deps := Deps{
		Capture:     h.capture,
		Transcriber: h.transcriber,
		Committer: CommitFunc(func(_ context.Context, text string) error {
			h.commitMu.Lock()
			defer h.commitMu.Unlock()
			if h.commitErr != nil {
				return h.commitErr
			}
			h.committed = append(h.committed, text)
			return nil
		}),
		Accountant: stats.NewAccountant(h.counter, nil),
		Presenter:  h.presenter,
		Transcript: transcript.Options{},
		OnResult:   func(r Result) { h.results <- r },
	}
	for _, opt := range opts {
		opt(h, &deps)
	}

	h.ctrl = NewController(deps, initial)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- h.ctrl.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-runDone:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("controller did not stop")
		}
	})
	return h
}

func keyed(provider transcribe.Provider) settings.Settings {
	s := settings.Default()
	s.APIKey = "sk-test"
	s.Provider = provider
	return s
}

func (h *harness) commits() []string {
	h.commitMu.Lock()
	defer h.commitMu.Unlock()
	return append([]string(nil), h.committed...)
}

func (h *harness) nextResult(t *testing.T) Result {
	t.Helper()
	select {
	case r := <-h.results:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session result")
		return Result{}
	}
}

func waitForState(t *testing.T, ctrl *Controller, want fsm.State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return ctrl.State() == want
	}, 2*time.Second, 5*time.Millisecond)
}
