package hotkey

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrUnsupported is returned by backends on platforms without global shortcuts.
var ErrUnsupported = errors.New("global hotkeys are not supported on this platform")

// Registration is one live OS-level shortcut.
type Registration interface {
	Unregister() error
}

// Backend registers a binding and invokes onPress for every key-down.
type Backend interface {
	Register(b Binding, onPress func()) (Registration, error)
}

// Manager keeps at most one registration alive and swaps it atomically.
type Manager struct {
	backend Backend
	onPress func()
	logger  *slog.Logger

	mu      sync.Mutex
	current *Binding
	reg     Registration
}

func NewManager(backend Backend, onPress func(), logger *slog.Logger) *Manager {
	return &Manager{backend: backend, onPress: onPress, logger: logger}
}

// Rebind unregisters the previous shortcut, then registers descriptor.
// On failure no shortcut is active; the previous one is not restored.
func (m *Manager) Rebind(descriptor string) error {
	binding, err := Parse(descriptor)
	if err != nil {
		m.mu.Lock()
		unregErr := m.unregisterLocked()
		m.mu.Unlock()
		return errors.Join(err, unregErr)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.unregisterLocked(); err != nil {
		m.logWarn("previous hotkey unregister failed", "error", err.Error())
	}

	reg, err := m.backend.Register(binding, m.onPress)
	if err != nil {
		return fmt.Errorf("register hotkey %s: %w", binding, err)
	}
	m.reg = reg
	m.current = &binding
	m.logInfo("hotkey registered", "hotkey", binding.String())
	return nil
}

// Current returns the active binding, if any.
func (m *Manager) Current() (Binding, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Binding{}, false
	}
	return *m.current, true
}

// Close unregisters the active shortcut.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unregisterLocked()
}

func (m *Manager) unregisterLocked() error {
	reg := m.reg
	m.reg = nil
	m.current = nil
	if reg == nil {
		return nil
	}
	return reg.Unregister()
}

func (m *Manager) logInfo(msg string, args ...any) {
	if m.logger == nil {
		return
	}
	m.logger.Info(msg, args...)
}

func (m *Manager) logWarn(msg string, args ...any) {
	if m.logger == nil {
		return
	}
	m.logger.Warn(msg, args...)
}
