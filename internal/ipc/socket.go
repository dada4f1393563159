package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

var ErrAlreadyRunning = errors.New("alphavoice is already running")

const socketName = "alphavoice.sock"

// RuntimeSocketPath returns $XDG_RUNTIME_DIR/alphavoice.sock. macOS has no
// XDG runtime dir, so it falls back to a per-user directory under the temp dir.
func RuntimeSocketPath() (string, error) {
	runtimeDir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if runtimeDir != "" {
		return filepath.Join(runtimeDir, socketName), nil
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("alphavoice-%d", os.Getuid()), socketName), nil
}

// AcquireOptions tunes stale-socket recovery.
type AcquireOptions struct {
	// ProbeTimeout bounds the status round trip against an existing socket.
	ProbeTimeout time.Duration
	// Retries is how many extra listen attempts follow a stale-socket removal.
	Retries int
	// OnStale runs after an unresponsive socket file is removed.
	OnStale func(ctx context.Context, path string)
}

// Socket is the single-owner control socket. Close stops listening and
// unlinks the path only while it still refers to this socket.
type Socket struct {
	net.Listener
	path string
	info os.FileInfo

	closeOnce sync.Once
	closeErr  error
}

// Path returns the socket's filesystem location.
func (s *Socket) Path() string { return s.path }

func (s *Socket) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.Listener.Close()
		if current, err := os.Lstat(s.path); err == nil && s.info != nil && os.SameFile(current, s.info) {
			_ = os.Remove(s.path)
		}
	})
	return s.closeErr
}

// Acquire claims path for this process. A responsive owner yields
// ErrAlreadyRunning; an unresponsive socket file is removed and retried.
// A socket that accepts but never answers is left alone.
func Acquire(ctx context.Context, path string, opts AcquireOptions) (*Socket, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ensure runtime socket dir: %w", err)
	}

	for attempt := 0; attempt <= opts.Retries; attempt++ {
		sock, err := listen(path)
		if err == nil {
			return sock, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("listen unix %s: %w", path, err)
		}

		alive, probeErr := Probe(ctx, path, opts.ProbeTimeout)
		if alive {
			return nil, ErrAlreadyRunning
		}
		if probeErr != nil {
			return nil, fmt.Errorf("probe existing socket %s: %w", path, probeErr)
		}

		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket %s: %w", path, err)
		}
		if opts.OnStale != nil {
			opts.OnStale(ctx, path)
		}

		if attempt < opts.Retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(25*(attempt+1)) * time.Millisecond):
			}
		}
	}

	return nil, fmt.Errorf("failed to acquire socket %s after %d retries", path, opts.Retries)
}

func listen(path string) (*Socket, error) {
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if ul, ok := listener.(*net.UnixListener); ok {
		// Close below decides whether the path is still ours.
		ul.SetUnlinkOnClose(false)
	}
	_ = os.Chmod(path, 0o600)

	info, _ := os.Lstat(path)
	return &Socket{Listener: listener, path: path, info: info}, nil
}
