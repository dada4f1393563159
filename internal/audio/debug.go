package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DumpingRecorder writes every finished clip under dir before handing it on.
type DumpingRecorder struct {
	Recorder
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// WithDebugDump wraps rec so clips are also persisted for debugging.
func WithDebugDump(rec Recorder, dir string, logger *slog.Logger) *DumpingRecorder {
	return &DumpingRecorder{Recorder: rec, dir: dir, logger: logger, now: time.Now}
}

func (d *DumpingRecorder) Stop(ctx context.Context) (Clip, error) {
	clip, err := d.Recorder.Stop(ctx)
	if err != nil || clip.Empty() {
		return clip, err
	}

	path, dumpErr := d.write(clip)
	if d.logger != nil {
		if dumpErr != nil {
			d.logger.Warn("unable to write debug audio dump", "error", dumpErr.Error())
		} else {
			d.logger.Debug("debug audio dump written", "path", path, "bytes", len(clip.Data))
		}
	}
	return clip, nil
}

func (d *DumpingRecorder) write(clip Clip) (string, error) {
	if err := os.MkdirAll(d.dir, 0o700); err != nil {
		return "", fmt.Errorf("create debug dir: %w", err)
	}
	name := fmt.Sprintf("audio-%s.%s", d.now().Format("20060102-150405.000"), clip.Ext())
	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, clip.Data, 0o600); err != nil {
		return "", fmt.Errorf("write debug file %q: %w", path, err)
	}
	return path, nil
}
