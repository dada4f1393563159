package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alphavoice/alphavoice/internal/config"
)

const (
	ffmpegStartupGrace = 250 * time.Millisecond
	ffmpegStopGrace    = 1200 * time.Millisecond
)

// FFmpegRecorder captures mono PCM16 from the platform input device through ffmpeg.
// On macOS the default input format is avfoundation.
type FFmpegRecorder struct {
	command     string
	inputFormat string
	input       string
	sampleRate  int
	logger      *slog.Logger

	mu     sync.Mutex
	active *ffmpegProcess
}

func NewFFmpegRecorder(cfg config.CaptureConfig, logger *slog.Logger) *FFmpegRecorder {
	command := strings.TrimSpace(cfg.Command)
	if command == "" {
		command = "ffmpeg"
	}
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	input := cfg.Input
	if input == "" {
		input = ":0"
	}
	return &FFmpegRecorder{
		command:     command,
		inputFormat: cfg.InputFormat,
		input:       input,
		sampleRate:  sampleRate,
		logger:      logger,
	}
}

func (r *FFmpegRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return ErrAlreadyRecording
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", r.inputFormat,
		"-i", r.input,
		"-ac", "1",
		"-ar", strconv.Itoa(r.sampleRate),
		"-f", "s16le",
		"-",
	}

	proc := &ffmpegProcess{waitErr: make(chan error, 1)}
	cmd := exec.CommandContext(ctx, r.command, args...)
	cmd.Stdout = &proc.pcm
	cmd.Stderr = &proc.stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", r.command, err)
	}
	proc.process = cmd.Process

	go func() {
		proc.waitErr <- cmd.Wait()
		close(proc.waitErr)
	}()

	select {
	case err := <-proc.waitErr:
		stderr := trimmed(proc.stderr.String())
		if looksLikePermissionDenied(stderr) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, stderr)
		}
		if err != nil {
			return fmt.Errorf("ffmpeg exited before capture started: %w: %s", err, stderr)
		}
		return errors.New("ffmpeg exited before capture started")
	case <-time.After(ffmpegStartupGrace):
	}

	r.active = proc
	if r.logger != nil {
		r.logger.Debug("ffmpeg capture started", "input_format", r.inputFormat, "input", r.input)
	}
	return nil
}

func (r *FFmpegRecorder) Stop(_ context.Context) (Clip, error) {
	proc, err := r.take()
	if err != nil {
		return Clip{}, err
	}

	if err := proc.stop(); err != nil {
		return Clip{}, err
	}
	pcm := proc.pcm.Bytes()
	if len(pcm) == 0 {
		return Clip{}, errors.New("no audio captured")
	}

	return Clip{
		Data:   EncodeWAV(pcm, r.sampleRate, 1),
		Format: "wav",
		Device: r.input,
	}, nil
}

func (r *FFmpegRecorder) Cancel(_ context.Context) error {
	proc, err := r.take()
	if err != nil {
		return err
	}
	return proc.stop()
}

func (r *FFmpegRecorder) take() (*ffmpegProcess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return nil, ErrNotRecording
	}
	proc := r.active
	r.active = nil
	return proc, nil
}

type ffmpegProcess struct {
	process *os.Process
	waitErr chan error
	pcm     syncBuffer
	stderr  syncBuffer

	stopOnce sync.Once
	stopErr  error
}

// stop interrupts ffmpeg so it flushes, then kills it after the grace period.
func (p *ffmpegProcess) stop() error {
	p.stopOnce.Do(func() {
		if p.process != nil {
			_ = p.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-p.waitErr:
			if ok {
				p.stopErr = normalizeStopErr(err)
			}
		case <-time.After(ffmpegStopGrace):
			if p.process != nil {
				_ = p.process.Kill()
			}
			if err, ok := <-p.waitErr; ok {
				p.stopErr = normalizeStopErr(err)
			}
		}

		if p.stopErr != nil && p.stderr.Len() > 0 {
			p.stopErr = fmt.Errorf("%w: %s", p.stopErr, trimmed(p.stderr.String()))
		}
	})
	return p.stopErr
}

// normalizeStopErr treats a non-zero exit after our own interrupt as a clean stop.
func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func looksLikePermissionDenied(stderr string) bool {
	lower := strings.ToLower(stderr)
	return strings.Contains(lower, "not authorized") ||
		strings.Contains(lower, "permission denied") ||
		strings.Contains(lower, "access denied")
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

// syncBuffer is a bytes.Buffer safe for the exec copy goroutine and readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}
