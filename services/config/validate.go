package config

import (
	"fmt"

	"ina260-go/drivers/ina260"
)

// Validate checks configuration correctness.
// It performs declarative validation only and does not mutate cfg.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: want debug, info, warn or error", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format %q: want text or json", cfg.Log.Format)
	}

	if cfg.Heartbeat.IntervalMs < 0 {
		return fmt.Errorf("heartbeat.interval_ms must not be negative")
	}

	buses := make(map[string]struct{}, len(cfg.Buses))
	for i, b := range cfg.Buses {
		if b.ID == "" {
			return fmt.Errorf("buses[%d]: id is required", i)
		}
		if b.Path == "" {
			return fmt.Errorf("bus %q: path is required", b.ID)
		}
		if _, dup := buses[b.ID]; dup {
			return fmt.Errorf("bus %q: declared twice", b.ID)
		}
		buses[b.ID] = struct{}{}
	}

	devs := make(map[string]struct{}, len(cfg.Devices))
	for i, d := range cfg.Devices {
		if d.ID == "" {
			return fmt.Errorf("devices[%d]: id is required", i)
		}
		if _, dup := devs[d.ID]; dup {
			return fmt.Errorf("device %q: declared twice", d.ID)
		}
		devs[d.ID] = struct{}{}

		if _, ok := buses[d.Bus]; !ok {
			return fmt.Errorf("device %q: unknown bus %q", d.ID, d.Bus)
		}
		if d.Addr > 0x7F {
			return fmt.Errorf("device %q: addr 0x%X is not a 7-bit address", d.ID, d.Addr)
		}
		if d.PollMs < 0 {
			return fmt.Errorf("device %q: poll_ms must not be negative", d.ID)
		}
		if d.AcquireTimeoutMs < 0 {
			return fmt.Errorf("device %q: acquire_timeout_ms must not be negative", d.ID)
		}
		if _, err := ina260.ParseFormat(d.Format); err != nil {
			return fmt.Errorf("device %q: format %q: %w", d.ID, d.Format, err)
		}
	}
	return nil
}
