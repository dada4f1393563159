package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alphavoice/alphavoice/internal/audio"
	"github.com/alphavoice/alphavoice/internal/config"
	"github.com/alphavoice/alphavoice/internal/hotkey"
	"github.com/alphavoice/alphavoice/internal/indicator"
	"github.com/alphavoice/alphavoice/internal/ipc"
	"github.com/alphavoice/alphavoice/internal/output"
	"github.com/alphavoice/alphavoice/internal/session"
	"github.com/alphavoice/alphavoice/internal/settings"
	"github.com/alphavoice/alphavoice/internal/stats"
	"github.com/alphavoice/alphavoice/internal/transcript"
	"github.com/alphavoice/alphavoice/internal/tray"
)

// hotkeyBackend is swapped in tests.
var hotkeyBackend = hotkey.NewOSBackend

// commandRun is the long-lived owner: it holds the socket, the settings
// store, the global shortcut, and the menu bar until ctx ends or Quit.
func (r Runner) commandRun(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, ipc.AcquireOptions{
		ProbeTimeout: 180 * time.Millisecond,
		Retries:      8,
		OnStale: func(_ context.Context, path string) {
			logger.Warn("removed stale control socket", "socket", path)
		},
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = listener.Close() }()

	loadDotEnv(logger)
	store, err := openStore(cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	current, err := store.Load(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	current = settings.WithEnvFallback(current, os.Getenv)

	capture, err := audio.NewRecorder(cfg.Capture, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if cfg.Debug.EnableAudioDump {
		if stateDir, dirErr := config.StateDir(); dirErr == nil {
			capture = audio.WithDebugDump(capture, filepath.Join(stateDir, "debug"), logger)
		}
	}

	committer := output.NewCommitter(cfg, logger)
	notifier := indicator.NewNotifier(cfg.Indicator, current.ShowIndicator, logger)
	presenter := indicator.NewBroadcaster(notifier)
	messages := indicator.MessagesFromEnv()

	controller := session.NewController(session.Deps{
		Logger:      logger,
		Capture:     capture,
		Transcriber: newTranscribeClient(cfg, logger),
		Committer:   committer,
		Accountant:  stats.NewAccountant(store, logger),
		Presenter:   presenter,
		Transcript:  transcript.Options{TrailingSpace: cfg.Transcript.TrailingSpace},
	}, current)

	trayOpts := tray.Options{
		Enabled:  cfg.Tray.Enable,
		AppName:  cfg.Indicator.AppName,
		Hotkey:   current.Hotkey,
		Messages: messages,
		OnToggle: controller.Toggle,
		OnCopyLast: func() {
			if text := controller.LastTranscript(); text != "" {
				if err := committer.Copy(ctx, text); err != nil {
					logger.Warn("copy last transcript failed", "error", err.Error())
				}
			}
		},
	}

	err = tray.Run(ctx, trayOpts, func(ctx context.Context, t *tray.Tray) error {
		presenter.Add(t)
		if total, err := store.TotalWords(ctx); err == nil {
			t.SetTotal(total)
		}

		o := &owner{
			logger:     logger,
			store:      store,
			controller: controller,
			notifier:   notifier,
			presenter:  presenter,
			tray:       t,
			stderr:     r.Stderr,
		}
		o.hotkeys = hotkey.NewManager(hotkeyBackend(), controller.Toggle, logger)
		defer func() { _ = o.hotkeys.Close() }()
		_ = o.bindHotkey(ctx, current.Hotkey)

		serverCtx, serverCancel := context.WithCancel(ctx)
		defer serverCancel()

		serverErrCh := make(chan error, 1)
		go func() {
			serverErrCh <- ipc.Serve(serverCtx, listener, o)
		}()

		logger.Info("owner ready", "socket", socketPath, "provider", current.Provider.Name(), "hotkey", current.Hotkey)
		runErr := controller.Run(ctx)
		serverCancel()
		if serverErr := <-serverErrCh; serverErr != nil {
			return fmt.Errorf("ipc server failed: %w", serverErr)
		}
		return runErr
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// owner answers control-socket requests. Settings writes are handled here
// because they touch the store, the shortcut, and the surfaces together.
type owner struct {
	logger     *slog.Logger
	store      settings.Store
	controller *session.Controller
	notifier   *indicator.Notifier
	presenter  indicator.Presenter
	tray       *tray.Tray
	hotkeys    *hotkey.Manager
	stderr     io.Writer
}

func (o *owner) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	if req.Command != ipc.CommandSaveSettings {
		return o.controller.Handle(ctx, req)
	}
	state := string(o.controller.State())
	if req.Settings == nil {
		return ipc.Response{OK: false, State: state, Error: "save-settings requires settings"}
	}

	patch, err := toPatch(*req.Settings)
	if err != nil {
		return ipc.Response{OK: false, State: state, Error: err.Error()}
	}
	saved, err := o.store.Save(ctx, patch)
	if err != nil {
		return ipc.Response{OK: false, State: state, Error: err.Error()}
	}
	saved = settings.WithEnvFallback(saved, os.Getenv)

	o.controller.UpdateSettings(saved)
	o.notifier.SetVisible(saved.ShowIndicator)
	o.logger.Info("settings saved", "provider", saved.Provider.Name(), "hotkey", saved.Hotkey, "api_key", saved.Redacted())

	resp := ipc.Response{
		OK:       true,
		State:    state,
		Message:  settingsSummary(saved),
		Provider: saved.Provider.Name(),
		Hotkey:   saved.Hotkey,
	}
	if patch.Hotkey != nil {
		if err := o.bindHotkey(ctx, saved.Hotkey); err != nil {
			resp.OK = false
			resp.Error = err.Error()
		}
	}
	return resp
}

func (o *owner) bindHotkey(ctx context.Context, descriptor string) error {
	o.tray.SetHotkey(descriptor)
	err := o.hotkeys.Rebind(descriptor)
	if err == nil {
		return nil
	}
	o.logger.Warn("hotkey registration failed", "hotkey", descriptor, "error", err.Error())
	if errors.Is(err, hotkey.ErrUnsupported) {
		fmt.Fprintf(o.stderr, "warning: %v; bind `%s toggle` to a desktop shortcut\n", err, binaryName)
		return nil
	}
	o.presenter.Error(ctx, fmt.Sprintf("Shortcut %s is unavailable", descriptor))
	return err
}
