// Package doctor runs readiness diagnostics for config, credentials, tools, audio, and the provider.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/alphavoice/alphavoice/internal/audio"
	"github.com/alphavoice/alphavoice/internal/config"
	"github.com/alphavoice/alphavoice/internal/hotkey"
	"github.com/alphavoice/alphavoice/internal/settings"
	"github.com/alphavoice/alphavoice/internal/transcribe"
)

const providerTimeout = 5 * time.Second

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Pinger verifies provider reachability for a key.
type Pinger interface {
	Ping(context.Context, transcribe.Request) error
}

// Inputs are everything doctor inspects.
type Inputs struct {
	Config   config.Loaded
	Settings settings.Settings
	// Pinger is optional; nil skips the provider round trip.
	Pinger Pinger
}

// Run executes environment/config/runtime checks.
func Run(ctx context.Context, in Inputs) Report {
	cfg := in.Config.Config
	checks := []Check{{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", in.Config.Path),
	}}

	checks = append(checks, checkAPIKey(in.Settings))
	checks = append(checks, checkHotkey(in.Settings.Hotkey))
	checks = append(checks, checkCommand(cfg.Clipboard.Argv, "clipboard_cmd"))
	if cfg.Paste.Enable {
		checks = append(checks, checkCommand(cfg.PasteCmd.Argv, "paste_cmd"))
	}
	checks = append(checks, checkCapture(ctx, cfg.Capture))

	if in.Pinger != nil && in.Settings.HasAPIKey() {
		checks = append(checks, checkProvider(ctx, in.Pinger, in.Settings))
	}

	return Report{Checks: checks}
}

func checkAPIKey(s settings.Settings) Check {
	name := "api_key"
	if !s.HasAPIKey() {
		return Check{
			Name:    name,
			Pass:    false,
			Message: fmt.Sprintf("not set for %s; create one at %s and run `alphavoice set --api-key KEY` or export %s", s.Provider, s.Provider.KeyURL(), s.Provider.EnvKey()),
		}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("%s key %s", s.Provider, s.Redacted())}
}

func checkHotkey(descriptor string) Check {
	binding, err := hotkey.Parse(descriptor)
	if err != nil {
		return Check{Name: "hotkey", Pass: false, Message: err.Error()}
	}
	return Check{Name: "hotkey", Pass: true, Message: binding.String()}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkCapture validates the configured capture backend can be reached.
func checkCapture(ctx context.Context, cfg config.CaptureConfig) Check {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "pulse":
		return checkAudioSelection(ctx, cfg)
	default:
		return checkBinary(cfg.Command, "ffmpeg capture backend")
	}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.CaptureConfig) Check {
	selection, err := audio.SelectDevice(ctx, cfg.Input, cfg.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkProvider lists models with the configured key.
func checkProvider(ctx context.Context, pinger Pinger, s settings.Settings) Check {
	name := "provider." + s.Provider.Name()
	pingCtx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	err := pinger.Ping(pingCtx, s.Request())
	if err == nil {
		return Check{Name: name, Pass: true, Message: fmt.Sprintf("reachable, model %s", s.Provider.Model())}
	}

	var upstream *transcribe.UpstreamError
	if errors.As(err, &upstream) && upstream.StatusCode != 0 {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("HTTP %d: %s", upstream.StatusCode, upstream.Message)}
	}
	return Check{Name: name, Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
}
