//go:build !linux

package main

import "errors"

// raisePriority is not available on non-Linux platforms.
func raisePriority() error {
	return errors.New("real-time scheduling not supported on this platform")
}
