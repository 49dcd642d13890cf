package config

import (
	"context"
	"log/slog"

	"ina260-go/bus"
)

const configPrefix = "config"

// Topics published by Service, one retained message per section.
func TopicSection(name string) bus.Topic { return bus.T(configPrefix, name) }

// Service owns the config file: it publishes the current config as retained
// messages and republishes on every accepted reload.
type Service struct {
	path string
	conn *bus.Connection
	log  *slog.Logger
}

func NewService(path string, conn *bus.Connection, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{path: path, conn: conn, log: log.With("svc", "config")}
}

// Publish replaces the retained config/<section> messages.
func (s *Service) Publish(cfg *Config) {
	for name, v := range map[string]any{
		"log":       cfg.Log,
		"trace":     cfg.Trace,
		"heartbeat": cfg.Heartbeat,
		"buses":     cfg.Buses,
		"devices":   cfg.Devices,
	} {
		s.conn.Publish(s.conn.NewMessage(TopicSection(name), v, true))
	}
}

// Run watches the file until ctx is done. Each accepted config is published
// and then passed to apply.
func (s *Service) Run(ctx context.Context, apply func(*Config)) error {
	return Watch(ctx, s.path, s.log, func(cfg *Config) {
		s.Publish(cfg)
		if apply != nil {
			apply(cfg)
		}
	})
}
