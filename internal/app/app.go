package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/text/language"

	"github.com/alphavoice/alphavoice/internal/audio"
	"github.com/alphavoice/alphavoice/internal/cli"
	"github.com/alphavoice/alphavoice/internal/config"
	"github.com/alphavoice/alphavoice/internal/doctor"
	"github.com/alphavoice/alphavoice/internal/hotkey"
	"github.com/alphavoice/alphavoice/internal/ipc"
	"github.com/alphavoice/alphavoice/internal/logging"
	"github.com/alphavoice/alphavoice/internal/settings"
	"github.com/alphavoice/alphavoice/internal/stats"
	"github.com/alphavoice/alphavoice/internal/transcribe"
	"github.com/alphavoice/alphavoice/internal/version"
)

const binaryName = "alphavoice"

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	logRuntime, err := logging.New(cfgLoaded.Config.Log.Level)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandRun:
		return r.commandRun(ctx, cfgLoaded.Config, logger)
	case cli.CommandDoctor:
		return r.commandDoctor(ctx, cfgLoaded, logger)
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandStats:
		return r.commandStats(ctx, cfgLoaded.Config, logger)
	case cli.CommandSet:
		return r.commandSet(ctx, cfgLoaded.Config, parsed.Set, logger)
	case cli.CommandSubmit:
		return r.commandSubmit(ctx, parsed.AudioPath)
	case cli.CommandToggle:
		return r.forwardOrFail(ctx, ipc.Request{Command: ipc.CommandToggle})
	case cli.CommandCancel:
		return r.forwardOrFail(ctx, ipc.Request{Command: ipc.CommandCancel})
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, ipc.Request{Command: ipc.CommandStatus})
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.State == "" {
			resp.State = "idle"
		}
		fmt.Fprintln(r.Stdout, resp.State)
		return 0
	}

	fmt.Fprintln(r.Stdout, "idle")
	return 0
}

// commandStats asks the owner first; the store is locked while one runs.
func (r Runner) commandStats(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	if socketPath, err := ipc.RuntimeSocketPath(); err == nil {
		resp, handled, err := tryForward(ctx, socketPath, ipc.Request{Command: ipc.CommandStats})
		if handled {
			if err != nil {
				fmt.Fprintf(r.Stderr, "error: %v\n", err)
				return 1
			}
			fmt.Fprintln(r.Stdout, stats.Summary(resp.TotalWords, language.English))
			return 0
		}
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	total, err := store.TotalWords(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(r.Stdout, stats.Summary(total, language.English))
	return 0
}

func (r Runner) commandSet(ctx context.Context, cfg config.Config, flags cli.SetFlags, logger *slog.Logger) int {
	wire := ipc.SettingsPatch{
		APIKey:        flags.APIKey,
		Provider:      flags.Provider,
		Hotkey:        flags.Hotkey,
		ShowIndicator: flags.ShowIndicator,
	}
	patch, err := toPatch(wire)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 2
	}

	if socketPath, err := ipc.RuntimeSocketPath(); err == nil {
		resp, handled, err := tryForward(ctx, socketPath, ipc.Request{Command: ipc.CommandSaveSettings, Settings: &wire})
		if handled {
			if err != nil {
				fmt.Fprintf(r.Stderr, "error: %v\n", err)
				return 1
			}
			if resp.Message != "" {
				fmt.Fprintln(r.Stdout, resp.Message)
			}
			return 0
		}
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	saved, err := store.Save(ctx, patch)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	logger.Info("settings saved", "provider", saved.Provider.Name(), "hotkey", saved.Hotkey, "api_key", saved.Redacted())
	fmt.Fprintln(r.Stdout, settingsSummary(saved))
	return 0
}

func (r Runner) commandSubmit(ctx context.Context, path string) int {
	abs, err := filepath.Abs(path)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if _, err := os.Stat(abs); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return r.forwardOrFail(ctx, ipc.Request{Command: ipc.CommandSubmit, AudioPath: abs})
}

func (r Runner) commandDoctor(ctx context.Context, loaded config.Loaded, logger *slog.Logger) int {
	current := settings.Default()
	if store, err := openStore(loaded.Config, logger); err == nil {
		if s, loadErr := store.Load(ctx); loadErr == nil {
			current = s
		}
		_ = store.Close()
	} else {
		// An owner holds the store lock; its settings come from env only here.
		fmt.Fprintf(r.Stderr, "warning: %v\n", err)
	}
	loadDotEnv(logger)
	current = settings.WithEnvFallback(current, os.Getenv)

	report := doctor.Run(ctx, doctor.Inputs{
		Config:   loaded,
		Settings: current,
		Pinger:   newTranscribeClient(loaded.Config, logger),
	})
	fmt.Fprintln(r.Stdout, report.String())
	if report.OK() {
		return 0
	}
	return 1
}

func (r Runner) forwardOrFail(ctx context.Context, req ipc.Request) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, req)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: %s is not running (start it with `%s run`)\n", binaryName, binaryName)
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// toPatch validates a wire patch before anything is persisted.
func toPatch(wire ipc.SettingsPatch) (settings.Patch, error) {
	patch := settings.Patch{
		APIKey:        wire.APIKey,
		Hotkey:        wire.Hotkey,
		ShowIndicator: wire.ShowIndicator,
	}
	if wire.Provider != nil {
		provider, err := transcribe.ParseProvider(*wire.Provider)
		if err != nil {
			return settings.Patch{}, err
		}
		patch.Provider = &provider
	}
	if wire.Hotkey != nil {
		if _, err := hotkey.Parse(*wire.Hotkey); err != nil {
			return settings.Patch{}, err
		}
	}
	return patch, nil
}

func settingsSummary(s settings.Settings) string {
	indicatorState := "on"
	if !s.ShowIndicator {
		indicatorState = "off"
	}
	return fmt.Sprintf("provider=%s hotkey=%s indicator=%s api_key=%s",
		s.Provider.Name(), s.Hotkey, indicatorState, s.Redacted())
}

func openStore(cfg config.Config, logger *slog.Logger) (*settings.BadgerStore, error) {
	dir, err := config.StorePath(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("ensure settings store dir: %w", err)
	}
	return settings.OpenBadger(dir, logger)
}

func loadDotEnv(logger *slog.Logger) {
	paths := []string{".env"}
	if stateDir, err := config.StateDir(); err == nil {
		paths = append([]string{filepath.Join(stateDir, ".env")}, paths...)
	}
	if err := settings.LoadDotEnv(paths...); err != nil {
		logger.Warn("load .env failed", "error", err.Error())
	}
}

func newTranscribeClient(cfg config.Config, logger *slog.Logger) *transcribe.Client {
	return transcribe.NewClient(transcribe.Options{
		ScratchDir: cfg.Transcribe.ScratchDir,
		BaseURLs: map[string]string{
			transcribe.Primary.Name():   cfg.Providers.OpenAIBaseURL,
			transcribe.Alternate.Name(): cfg.Providers.GroqBaseURL,
		},
		Timeout: time.Duration(cfg.Transcribe.TimeoutMS) * time.Millisecond,
		Logger:  logger,
	})
}

// forwardTimeout is longer for requests that write the store or rebind the shortcut.
func forwardTimeout(cmd string) time.Duration {
	if cmd == ipc.CommandSaveSettings || cmd == ipc.CommandSubmit {
		return 2 * time.Second
	}
	return 220 * time.Millisecond
}

func tryForward(ctx context.Context, socketPath string, req ipc.Request) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, req, forwardTimeout(req.Command))
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) {
		return ipc.Response{}, false, nil
	}
	if isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", req.Command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
