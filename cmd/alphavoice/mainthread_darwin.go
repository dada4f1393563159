//go:build darwin

package main

import "golang.design/x/hotkey/mainthread"

// onMainThread keeps the Cocoa event loop on the main thread, which both
// the status bar and global shortcut registration depend on.
func onMainThread(fn func()) {
	mainthread.Init(fn)
}
