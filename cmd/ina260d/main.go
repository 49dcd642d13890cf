// Command ina260d binds the INA260 power monitors listed in its config file
// and serves their readings on an in-process bus, optionally with an
// interactive shell.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ina260-go/bus"
	"ina260-go/services/config"
	"ina260-go/services/hal"
	"ina260-go/services/hal/devices/ina260dev"
	"ina260-go/services/hal/platform"
	"ina260-go/services/hal/trace"
	"ina260-go/services/heartbeat"
	"ina260-go/services/shell"

	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "/etc/ina260d.yaml", "path to the YAML config file")
	interactive := flag.Bool("shell", false, "run the interactive shell")
	monitor := flag.Bool("monitor", false, "log every hal/# message at debug level")
	flag.Parse()

	if err := run(*configPath, *interactive, *monitor); err != nil {
		fmt.Fprintln(os.Stderr, "ina260d:", err)
		os.Exit(1)
	}
}

func run(path string, interactive, monitor bool) error {
	cfg, err := config.LoadValid(path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b := bus.NewBus(32)

	var sh *shell.Shell
	var out io.Writer = os.Stderr
	if interactive {
		if sh, err = shell.New(b.NewConnection("shell")); err != nil {
			return err
		}
		out = sh.Stdout()
	}
	log := cfg.Log.NewLogger(out)
	slog.SetDefault(log)

	if err := platform.InitHost(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}
	buses := platform.NewPeriph(cfg.BusPaths(), log)
	defer func() {
		if err := buses.Close(); err != nil {
			log.Warn("closing buses", "err", err)
		}
	}()

	tracer, closeTrace, err := newTracer(cfg.Trace, log)
	if err != nil {
		return err
	}
	defer closeTrace()

	h := hal.New(b.NewConnection("hal"), hal.Options{Buses: buses, Trace: tracer, Log: log})
	if err := h.AddDriver(ina260dev.New()); err != nil {
		return err
	}

	cfgSvc := config.NewService(path, b.NewConnection("config"), log)
	apply := func(c *config.Config) {
		if err := h.ReconcileBuses(ctx, buses, c.BusPaths(), c.HALDevices()); err != nil {
			log.Warn("some devices failed to bind", "err", err)
		}
	}
	cfgSvc.Publish(cfg)
	apply(cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { h.Run(gctx); return nil })
	g.Go(func() error { return cfgSvc.Run(gctx, apply) })
	g.Go(func() error {
		(&heartbeat.Service{Log: log}).Run(gctx, b.NewConnection("heartbeat"))
		return nil
	})
	if monitor {
		g.Go(func() error { runMonitor(gctx, b.NewConnection("monitor"), log); return nil })
	}
	if sh != nil {
		g.Go(func() error { sh.Run(gctx, cancel); return nil })
	}

	log.Info("ina260d started", "config", path, "devices", len(cfg.Devices))
	err = g.Wait()
	log.Info("ina260d stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newTracer(c config.TraceConfig, log *slog.Logger) (trace.Logger, func(), error) {
	var loggers []trace.Logger
	closeFn := func() {}
	if c.File != "" {
		fl, err := trace.NewFileLogger(c.File)
		if err != nil {
			return nil, nil, fmt.Errorf("trace file: %w", err)
		}
		loggers = append(loggers, fl)
		closeFn = func() {
			if err := fl.Close(); err != nil {
				log.Warn("closing trace file", "err", err)
			}
		}
	}
	if c.Console {
		loggers = append(loggers, trace.NewSlogAdapter(log))
	}
	if len(loggers) == 0 {
		return nil, closeFn, nil
	}
	return trace.NewMultiLogger(loggers...), closeFn, nil
}

// runMonitor logs bus traffic under hal/ for diagnostics.
func runMonitor(ctx context.Context, conn *bus.Connection, log *slog.Logger) {
	sub := conn.Subscribe(bus.T("hal", "#"))
	defer conn.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-sub.Channel():
			log.Debug("monitor", "topic", m.Topic.String(), "retained", m.Retained, "payload", m.Payload)
		}
	}
}
