package config

import (
	"io"
	"log/slog"

	"ina260-go/drivers/ina260"
	"ina260-go/services/hal"
	"ina260-go/services/hal/devices/ina260dev"
	"ina260-go/x/timex"
)

// HALDevices converts the device list for hal.Reconcile. Driver parameters
// are built for known types; other types pass through without parameters
// and fail at bind with no_driver.
func (c *Config) HALDevices() []hal.DeviceConfig {
	out := make([]hal.DeviceConfig, 0, len(c.Devices))
	for _, d := range c.Devices {
		hd := hal.DeviceConfig{
			ID:        d.ID,
			Type:      d.Type,
			Bus:       d.Bus,
			Addr:      d.Addr,
			PollEvery: timex.FromMs(d.PollMs),
		}
		if d.Type == DefaultDeviceType {
			f, _ := ina260.ParseFormat(d.Format) // validated
			hd.Params = ina260dev.Params{
				AcquireTimeout: timex.FromMs(d.AcquireTimeoutMs),
				Format:         f,
				VerifyID:       d.VerifyID,
			}
		}
		out = append(out, hd)
	}
	return out
}

// BusPaths maps bus ids to their device paths.
func (c *Config) BusPaths() map[string]string {
	out := make(map[string]string, len(c.Buses))
	for _, b := range c.Buses {
		out[b.ID] = b.Path
	}
	return out
}

// SlogLevel maps the configured level name; unknown names map to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
