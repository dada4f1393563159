//go:build !darwin

package tray

import "context"

// Run executes body directly; the menu bar surface is macOS-only.
func Run(ctx context.Context, opts Options, body func(context.Context, *Tray) error) error {
	return body(ctx, New(opts))
}
