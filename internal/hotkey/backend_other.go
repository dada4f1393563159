//go:build !darwin

package hotkey

// OSBackend reports ErrUnsupported; bind `alphavoice toggle` to a desktop
// shortcut instead.
type OSBackend struct{}

func NewOSBackend() Backend {
	return OSBackend{}
}

func (OSBackend) Register(Binding, func()) (Registration, error) {
	return nil, ErrUnsupported
}
