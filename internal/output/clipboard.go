// Package output applies transcript commit side effects (clipboard and paste).
package output

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/alphavoice/alphavoice/internal/config"
)

const (
	clipboardTimeout = 2 * time.Second
	pasteTimeout     = 2 * time.Second
)

// Committer applies transcript output side effects (clipboard + optional paste).
type Committer struct {
	config config.Config
	logger *slog.Logger
}

// NewCommitter constructs a transcript committer from runtime config.
func NewCommitter(cfg config.Config, logger *slog.Logger) *Committer {
	return &Committer{config: cfg, logger: logger}
}

// Commit writes transcript text to the clipboard and dispatches paste-back.
// A paste failure is logged and never fails the commit.
func (c *Committer) Commit(ctx context.Context, transcript string) error {
	if transcript == "" {
		return nil
	}

	if err := c.Copy(ctx, transcript); err != nil {
		return err
	}

	if !c.config.Paste.Enable || len(c.config.PasteCmd.Argv) == 0 {
		return nil
	}

	pasteCtx, pasteCancel := context.WithTimeout(ctx, pasteTimeout)
	defer pasteCancel()
	if err := runCommandWithInput(pasteCtx, c.config.PasteCmd.Argv, ""); err != nil {
		c.logPasteFailure(err)
	}
	return nil
}

// Copy writes text to the clipboard without pasting.
func (c *Committer) Copy(ctx context.Context, text string) error {
	clipboardCtx, clipboardCancel := context.WithTimeout(ctx, clipboardTimeout)
	defer clipboardCancel()
	if err := runCommandWithInput(clipboardCtx, c.config.Clipboard.Argv, text); err != nil {
		return fmt.Errorf("set clipboard: %w", err)
	}
	return nil
}

// runCommandWithInput executes argv with input on stdin. Output written to
// stderr by the child is folded into the returned error.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(input)
	cmd.Stderr = &stderr
	cmd.WaitDelay = 250 * time.Millisecond

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s timed out: %w", argv[0], ctx.Err())
		}
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return fmt.Errorf("run %s: %w: %s", argv[0], err, detail)
		}
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	return nil
}

func (c *Committer) logPasteFailure(err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn("paste failed, transcript left on clipboard", "error", err.Error())
}
