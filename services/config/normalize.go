package config

import (
	"ina260-go/drivers/ina260"
	"ina260-go/x/strx"
)

const DefaultDeviceType = "ina260"

// Normalize fills defaults. It is allowed to mutate configuration and must
// only be called after Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Log.Level = strx.Coalesce(cfg.Log.Level, "info")
	cfg.Log.Format = strx.Coalesce(cfg.Log.Format, "text")

	for i := range cfg.Devices {
		d := &cfg.Devices[i]
		d.Type = strx.Coalesce(d.Type, DefaultDeviceType)
		if d.Type != DefaultDeviceType {
			continue
		}
		d.Addr = strx.Coalesce(d.Addr, ina260.AddressDefault)
		d.Format = strx.Coalesce(d.Format, ina260.FormatCompat.String())
	}
}
