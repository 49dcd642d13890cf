// Package config loads the daemon's YAML configuration, keeps it current
// while the file changes, and republishes it on the bus.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"ina260-go/services/heartbeat"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log       LogConfig        `yaml:"log"`
	Trace     TraceConfig      `yaml:"trace"`
	Heartbeat heartbeat.Config `yaml:"heartbeat"`
	Buses     []BusConfig      `yaml:"buses"`
	Devices   []DeviceConfig   `yaml:"devices"`
}

// ---- LOGGING ----

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// ---- TRACE ----

type TraceConfig struct {
	File    string `yaml:"file"`    // CBOR event log, appended
	Console bool   `yaml:"console"` // mirror events to the logger at debug level
}

// ---- BUSES ----

type BusConfig struct {
	ID   string `yaml:"id"`
	Path string `yaml:"path"` // e.g. /dev/i2c-1, or any name i2creg accepts
}

// ---- DEVICES ----

type DeviceConfig struct {
	ID               string `yaml:"id"`
	Type             string `yaml:"type"` // default ina260
	Bus              string `yaml:"bus"`
	Addr             uint16 `yaml:"addr"`
	PollMs           int    `yaml:"poll_ms"`
	AcquireTimeoutMs int    `yaml:"acquire_timeout_ms"`
	Format           string `yaml:"format"` // compat | padded
	VerifyID         bool   `yaml:"verify_id"`
}

// Parse decodes a YAML document. Unknown keys are rejected. An empty
// document yields an empty Config.
func Parse(b []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// Load reads and parses path. It neither validates nor normalizes.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(b)
}

// LoadValid is Load followed by Validate and Normalize.
func LoadValid(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	Normalize(cfg)
	return cfg, nil
}
