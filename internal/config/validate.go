package config

import "fmt"

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	p := &cfg.Pulsein

	if p.Offset != nil && *p.Offset < 0 {
		return fmt.Errorf("offset must be non-negative, got %d", *p.Offset)
	}
	if p.Capacity < 0 {
		return fmt.Errorf("capacity must be non-negative, got %d", p.Capacity)
	}
	if p.TimeoutUs < 0 {
		return fmt.Errorf("timeout_us must be non-negative, got %d", p.TimeoutUs)
	}
	if p.TriggerUs < 0 {
		return fmt.Errorf("trigger_us must be non-negative, got %d", p.TriggerUs)
	}
	if p.Pulses < 0 {
		return fmt.Errorf("pulses must be non-negative, got %d", p.Pulses)
	}
	return nil
}
