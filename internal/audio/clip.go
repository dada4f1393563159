// Package audio handles microphone capture backends and the audio clips they produce.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotRecording is returned when Stop or Cancel runs without an active capture.
	ErrNotRecording = errors.New("no active capture")
	// ErrAlreadyRecording is returned when Start runs while a capture is active.
	ErrAlreadyRecording = errors.New("capture already running")
	// ErrPermissionDenied reports that the OS refused microphone access.
	ErrPermissionDenied = errors.New("microphone access denied")
)

// Clip is one finished recording, encoded in the container named by Format.
type Clip struct {
	Data   []byte
	Format string
	Device string
}

// Empty reports whether the clip carries no audio bytes.
func (c Clip) Empty() bool {
	return len(c.Data) == 0
}

// Ext returns the file extension used when the clip is written to disk.
func (c Clip) Ext() string {
	format := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Format)), ".")
	if format == "" {
		return "wav"
	}
	return format
}

// ReadClip loads an encoded recording produced by an external capture surface.
func ReadClip(path string) (Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Clip{}, fmt.Errorf("read audio %q: %w", path, err)
	}
	return Clip{
		Data:   data,
		Format: strings.TrimPrefix(filepath.Ext(path), "."),
		Device: "external",
	}, nil
}

// Recorder is the capture surface contract: start, then stop with the clip or cancel.
type Recorder interface {
	Start(context.Context) error
	Stop(context.Context) (Clip, error)
	Cancel(context.Context) error
}
