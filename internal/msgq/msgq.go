// Package msgq carries control messages between the capture daemon and
// an external controller, with abstraction for testing.
package msgq

// Channel delivers discrete command messages and carries replies back.
// A message is a single command tag byte followed by optional
// decimal-ASCII argument bytes; replies are decimal-ASCII text.
type Channel interface {
	// ReceiveNonblocking returns the next pending command, if any.
	// Absence of a message is not an error.
	ReceiveNonblocking() ([]byte, bool)

	// Ready returns a channel that signals when a command may be
	// pending, so an idle consumer can park instead of spinning.
	Ready() <-chan struct{}

	// Send delivers a reply to the controller.
	Send(reply []byte) error

	// Close tears the channel down.
	Close() error
}
