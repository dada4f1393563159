//go:build !darwin

package main

func onMainThread(fn func()) {
	fn()
}
