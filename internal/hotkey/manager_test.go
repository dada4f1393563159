package hotkey

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu      sync.Mutex
	active  map[string]func()
	failFor string
	calls   []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{active: map[string]func(){}}
}

func (f *fakeBackend) Register(b Binding, onPress func()) (Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, b.String())
	if b.String() == f.failFor {
		return nil, errors.New("already taken")
	}
	f.active[b.String()] = onPress
	return &fakeRegistration{backend: f, key: b.String()}, nil
}

func (f *fakeBackend) press(key string) {
	f.mu.Lock()
	fn := f.active[key]
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (f *fakeBackend) activeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.active)
}

type fakeRegistration struct {
	backend *fakeBackend
	key     string
}

func (r *fakeRegistration) Unregister() error {
	r.backend.mu.Lock()
	defer r.backend.mu.Unlock()
	delete(r.backend.active, r.key)
	return nil
}

func TestManagerRebindKeepsExactlyOneBinding(t *testing.T) {
	backend := newFakeBackend()
	presses := 0
	m := NewManager(backend, func() { presses++ }, nil)

	require.NoError(t, m.Rebind("Option+Space"))
	require.NoError(t, m.Rebind("Control+Shift+D"))
	require.Equal(t, 1, backend.activeCount())

	backend.press("Option+Space")
	require.Equal(t, 0, presses)
	backend.press("Control+Shift+D")
	require.Equal(t, 1, presses)

	current, ok := m.Current()
	require.True(t, ok)
	require.Equal(t, "Control+Shift+D", current.String())
}

func TestManagerRebindSameBindingReRegisters(t *testing.T) {
	backend := newFakeBackend()
	m := NewManager(backend, func() {}, nil)

	require.NoError(t, m.Rebind("Option+Space"))
	require.NoError(t, m.Rebind("alt+space"))
	require.Equal(t, 1, backend.activeCount())
	require.Equal(t, []string{"Option+Space", "Option+Space"}, backend.calls)
}

func TestManagerRebindFailureLeavesNothingActive(t *testing.T) {
	backend := newFakeBackend()
	backend.failFor = "Command+Q"
	m := NewManager(backend, func() {}, nil)

	require.NoError(t, m.Rebind("Option+Space"))
	err := m.Rebind("Command+Q")
	require.Error(t, err)
	require.Contains(t, err.Error(), "already taken")
	require.Equal(t, 0, backend.activeCount())

	_, ok := m.Current()
	require.False(t, ok)
}

func TestManagerRebindInvalidDescriptorUnregisters(t *testing.T) {
	backend := newFakeBackend()
	m := NewManager(backend, func() {}, nil)

	require.NoError(t, m.Rebind("Option+Space"))
	require.Error(t, m.Rebind("Option+Banana"))
	require.Equal(t, 0, backend.activeCount())
}

func TestManagerClose(t *testing.T) {
	backend := newFakeBackend()
	m := NewManager(backend, func() {}, nil)

	require.NoError(t, m.Rebind("F5"))
	require.NoError(t, m.Close())
	require.Equal(t, 0, backend.activeCount())
	require.NoError(t, m.Close())
}
