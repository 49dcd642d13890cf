package trace

import (
	"context"
	"encoding/hex"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger at Debug level, or Warn for
// failed transactions.
type SlogAdapter struct {
	logger *slog.Logger
}

func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("dev", event.DeviceID),
		slog.String("bind_id", event.BindID),
		slog.Int("addr", int(event.Addr)),
		slog.String("w", hex.EncodeToString(event.Write)),
		slog.String("r", hex.EncodeToString(event.Read)),
		slog.Duration("took", event.Duration),
	}
	if event.Bus != "" {
		attrs = append(attrs, slog.String("bus", event.Bus))
	}
	level := slog.LevelDebug
	if event.Failed() {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("err", event.Err))
	}
	a.logger.LogAttrs(context.Background(), level, "i2c tx", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
