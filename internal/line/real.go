//go:build linux

package line

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealLine drives actual hardware through the Linux GPIO character device.
type RealLine struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// Request opens the named chip and requests the line at offset as an input.
func Request(chipName string, offset int) (*RealLine, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	l, err := chip.RequestLine(offset, gpiocdev.AsInput)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request line %d: %w", offset, err)
	}

	return &RealLine{chip: chip, line: l}, nil
}

// Value reads the current level.
func (r *RealLine) Value() (int, error) {
	v, err := r.line.Value()
	if err != nil {
		return 0, fmt.Errorf("read line: %w", err)
	}
	return v, nil
}

// SetValue drives the level while the line is an output.
func (r *RealLine) SetValue(v int) error {
	if err := r.line.SetValue(v); err != nil {
		return fmt.Errorf("set line: %w", err)
	}
	return nil
}

// ReconfigureOutput switches the line to output mode driving v.
func (r *RealLine) ReconfigureOutput(v int) error {
	if err := r.line.Reconfigure(gpiocdev.AsOutput(v)); err != nil {
		return fmt.Errorf("reconfigure output: %w", err)
	}
	return nil
}

// ReconfigureInput returns the line to input mode.
func (r *RealLine) ReconfigureInput() error {
	if err := r.line.Reconfigure(gpiocdev.AsInput); err != nil {
		return fmt.Errorf("reconfigure input: %w", err)
	}
	return nil
}

// Close reverts the line to an input and releases it.
// Reverting first leaves the pin floating rather than driven, so the
// observed circuit is not disturbed after exit.
func (r *RealLine) Close() error {
	var errs []error

	if r.line != nil {
		if err := r.line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure input: %w", err))
		}
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
