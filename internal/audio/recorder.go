package audio

import (
	"fmt"
	"log/slog"

	"github.com/alphavoice/alphavoice/internal/config"
)

// NewRecorder builds the capture backend selected by capture.backend.
func NewRecorder(cfg config.CaptureConfig, logger *slog.Logger) (Recorder, error) {
	switch cfg.Backend {
	case "ffmpeg", "":
		return NewFFmpegRecorder(cfg, logger), nil
	case "pulse":
		return NewPulseRecorder(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported capture backend %q", cfg.Backend)
	}
}
