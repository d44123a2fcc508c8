//go:build !linux

package line

import "errors"

// RealLine is not available on non-Linux platforms.
type RealLine struct{}

// Request returns an error on non-Linux platforms.
func Request(chipName string, offset int) (*RealLine, error) {
	return nil, errors.New("line: not supported on this platform (requires Linux)")
}

// Value is not implemented on non-Linux platforms.
func (r *RealLine) Value() (int, error) {
	return 0, errors.New("line: not supported")
}

// SetValue is not implemented on non-Linux platforms.
func (r *RealLine) SetValue(v int) error {
	return errors.New("line: not supported")
}

// ReconfigureOutput is not implemented on non-Linux platforms.
func (r *RealLine) ReconfigureOutput(v int) error {
	return errors.New("line: not supported")
}

// ReconfigureInput is not implemented on non-Linux platforms.
func (r *RealLine) ReconfigureInput() error {
	return errors.New("line: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealLine) Close() error {
	return nil
}
