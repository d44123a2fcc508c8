// Package line provides access to a single GPIO line with hardware
// abstraction. The real implementation uses the Linux GPIO character
// device. The fake implementation allows testing without hardware.
package line

// Consumer is the name reported to the kernel for line requests.
const Consumer = "pulsein"

// Line is a single requested GPIO line. The process owns the line for
// its lifetime; mode changes and reads on the same Line must be
// serialized by the caller.
type Line interface {
	// Value reads the current level (0 or 1).
	Value() (int, error)

	// SetValue drives the level while the line is an output.
	SetValue(v int) error

	// ReconfigureOutput switches the line to output mode driving v.
	ReconfigureOutput(v int) error

	// ReconfigureInput returns the line to input mode.
	ReconfigureInput() error

	// Close reverts the line to an input and releases it.
	Close() error
}
