package output

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alphavoice/alphavoice/internal/config"
	"github.com/stretchr/testify/require"
)

func TestRunCommandWithInputWritesStdin(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	outputPath := filepath.Join(t.TempDir(), "stdin.txt")

	err := runCommandWithInput(context.Background(), []string{scriptPath, outputPath}, "hello from alphavoice")
	require.NoError(t, err)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.Equal(t, "hello from alphavoice", string(data))
}

func TestRunCommandWithInputRejectsEmptyArgv(t *testing.T) {
	err := runCommandWithInput(context.Background(), nil, "payload")
	require.Error(t, err)
	require.Contains(t, err.Error(), "argv cannot be empty")
}

func TestCommitterCommitWritesClipboardWhenPasteDisabled(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	clipboardPath := filepath.Join(t.TempDir(), "clipboard.txt")

	cfg := config.Default()
	cfg.Paste.Enable = false
	cfg.Clipboard = config.CommandConfig{Argv: []string{scriptPath, clipboardPath}}

	committer := NewCommitter(cfg, nil)
	err := committer.Commit(context.Background(), "captured transcript")
	require.NoError(t, err)

	data, err := os.ReadFile(clipboardPath)
	require.NoError(t, err)
	require.Equal(t, "captured transcript", string(data))
}

func TestCommitterCommitSkipsEmptyTranscript(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	clipboardPath := filepath.Join(t.TempDir(), "clipboard.txt")

	cfg := config.Default()
	cfg.Paste.Enable = false
	cfg.Clipboard = config.CommandConfig{Argv: []string{scriptPath, clipboardPath}}

	committer := NewCommitter(cfg, nil)
	err := committer.Commit(context.Background(), "")
	require.NoError(t, err)

	_, statErr := os.Stat(clipboardPath)
	require.Error(t, statErr)
	require.True(t, os.IsNotExist(statErr))
}

func TestCommitterCommitReturnsErrorWhenClipboardCommandFails(t *testing.T) {
	failScript := writeFailScript(t, "clipboard failed")

	cfg := config.Default()
	cfg.Paste.Enable = false
	cfg.Clipboard = config.CommandConfig{Argv: []string{failScript}}

	committer := NewCommitter(cfg, nil)
	err := committer.Commit(context.Background(), "captured transcript")
	require.Error(t, err)
	require.Contains(t, err.Error(), "set clipboard")
	require.Contains(t, err.Error(), "clipboard failed")
}

func TestRunCommandWithInputReportsTimeout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slow.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/usr/bin/env bash\nsleep 5\n"), 0o755))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := runCommandWithInput(ctx, []string{path}, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "timed out")
}

func TestCommitterCommitPasteCmdFailureDoesNotFailCommit(t *testing.T) {
	clipboardScript := writeStdinCaptureScript(t)
	clipboardPath := filepath.Join(t.TempDir(), "clipboard.txt")
	pasteFailScript := writeFailScript(t, "paste failed")

	cfg := config.Default()
	cfg.Clipboard = config.CommandConfig{Argv: []string{clipboardScript, clipboardPath}}
	cfg.Paste.Enable = true
	cfg.PasteCmd = config.CommandConfig{Argv: []string{pasteFailScript}}

	committer := NewCommitter(cfg, nil)
	err := committer.Commit(context.Background(), "captured transcript")
	require.NoError(t, err)

	data, readErr := os.ReadFile(clipboardPath)
	require.NoError(t, readErr)
	require.Equal(t, "captured transcript", string(data))
}

func TestCommitterCommitDispatchesPasteAfterClipboard(t *testing.T) {
	clipboardScript := writeStdinCaptureScript(t)
	clipboardPath := filepath.Join(t.TempDir(), "clipboard.txt")
	markerPath := filepath.Join(t.TempDir(), "paste.log")
	pasteScript := writeMarkerScript(t, markerPath, clipboardPath)

	cfg := config.Default()
	cfg.Clipboard = config.CommandConfig{Argv: []string{clipboardScript, clipboardPath}}
	cfg.Paste.Enable = true
	cfg.PasteCmd = config.CommandConfig{Argv: []string{pasteScript}}

	committer := NewCommitter(cfg, nil)
	require.NoError(t, committer.Commit(context.Background(), "hello world"))

	marker, err := os.ReadFile(markerPath)
	require.NoError(t, err)
	require.Equal(t, "pasted:hello world\n", string(marker))
}

func TestCommitterCommitSkipsPasteWhenDisabled(t *testing.T) {
	clipboardScript := writeStdinCaptureScript(t)
	clipboardPath := filepath.Join(t.TempDir(), "clipboard.txt")
	markerPath := filepath.Join(t.TempDir(), "paste.log")
	pasteScript := writeMarkerScript(t, markerPath, clipboardPath)

	cfg := config.Default()
	cfg.Clipboard = config.CommandConfig{Argv: []string{clipboardScript, clipboardPath}}
	cfg.Paste.Enable = false
	cfg.PasteCmd = config.CommandConfig{Argv: []string{pasteScript}}

	committer := NewCommitter(cfg, nil)
	require.NoError(t, committer.Commit(context.Background(), "hello world"))

	_, statErr := os.Stat(markerPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestCommitterCopyDoesNotPaste(t *testing.T) {
	clipboardScript := writeStdinCaptureScript(t)
	clipboardPath := filepath.Join(t.TempDir(), "clipboard.txt")
	markerPath := filepath.Join(t.TempDir(), "paste.log")
	pasteScript := writeMarkerScript(t, markerPath, clipboardPath)

	cfg := config.Default()
	cfg.Clipboard = config.CommandConfig{Argv: []string{clipboardScript, clipboardPath}}
	cfg.Paste.Enable = true
	cfg.PasteCmd = config.CommandConfig{Argv: []string{pasteScript}}

	committer := NewCommitter(cfg, nil)
	require.NoError(t, committer.Copy(context.Background(), "last transcript"))

	data, err := os.ReadFile(clipboardPath)
	require.NoError(t, err)
	require.Equal(t, "last transcript", string(data))

	_, statErr := os.Stat(markerPath)
	require.True(t, os.IsNotExist(statErr))
}

func writeStdinCaptureScript(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "capture-stdin.sh")
	script := `#!/usr/bin/env bash
set -euo pipefail
cat > "$1"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeFailScript(t *testing.T, message string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "fail.sh")
	script := "#!/usr/bin/env bash\nset -euo pipefail\necho " + "\"" + message + "\"" + " >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

// writeMarkerScript records the clipboard contents at paste time, proving
// paste runs after the clipboard write.
func writeMarkerScript(t *testing.T, markerPath string, clipboardPath string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "paste.sh")
	script := `#!/usr/bin/env bash
set -euo pipefail
printf 'pasted:%s\n' "$(cat "` + clipboardPath + `")" >> "` + markerPath + `"
`
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(script)+"\n"), 0o755))
	return path
}
