// Package heartbeat publishes a retained liveness record for the daemon.
package heartbeat

import (
	"context"
	"log/slog"
	"time"

	"ina260-go/bus"
	"ina260-go/types"
	"ina260-go/x/timex"
)

var (
	topicConfigHeartbeat = bus.T("config", "heartbeat")
	TopicHeartbeat       = bus.T("svc", "heartbeat")
)

// DefaultInterval applies until a config/heartbeat message says otherwise.
const DefaultInterval = 10 * time.Second

// Config is the payload expected on config/heartbeat.
type Config struct {
	IntervalMs int `yaml:"interval_ms"`
}

type Service struct {
	Log *slog.Logger

	seq   uint64
	start time.Time
}

func (s *Service) beat(conn *bus.Connection) {
	s.seq++
	hb := types.Heartbeat{Seq: s.seq, UptimeMs: timex.Ms(time.Since(s.start)), TSms: timex.NowMs()}
	conn.Publish(conn.NewMessage(TopicHeartbeat, hb, true))
	s.Log.Debug("heartbeat", "seq", hb.Seq, "uptime_ms", hb.UptimeMs)
}

// Run publishes a heartbeat every interval and follows interval changes
// from config/heartbeat until ctx is cancelled.
func (s *Service) Run(ctx context.Context, conn *bus.Connection) {
	if s.Log == nil {
		s.Log = slog.Default()
	}
	s.Log = s.Log.With("svc", "heartbeat")
	s.start = time.Now()

	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	interval := DefaultInterval
	tick := time.NewTicker(interval)
	defer tick.Stop()
	s.beat(conn)

	for {
		select {
		case <-ctx.Done():
			s.Log.Info("heartbeat service stopping")
			return
		case <-tick.C:
			s.beat(conn)
		case msg := <-cfgSub.Channel():
			c, ok := msg.Payload.(Config)
			if !ok {
				s.Log.Warn("ignoring heartbeat config", "payload", msg.Payload)
				continue
			}
			next := timex.FromMs(c.IntervalMs)
			if next == 0 {
				next = DefaultInterval
			}
			if next != interval {
				interval = next
				tick.Reset(interval)
				s.Log.Info("heartbeat interval set", "interval", interval)
			}
		}
	}
}
