package platform

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
)

// Periph opens Linux I²C buses (/dev/i2c-N or a periph bus name) on first use.
// periph's i2c.Bus.Tx issues the write and read as one combined transfer with
// a repeated start, which is what the drivers require.
type Periph struct {
	mu    sync.Mutex
	paths map[string]string
	open  map[string]i2c.BusCloser
	log   *slog.Logger

	openFn func(name string) (i2c.BusCloser, error)
}

// InitHost loads periph's host drivers. Call once before ByID.
func InitHost() error {
	_, err := host.Init()
	return err
}

// NewPeriph maps bus ids to device paths, e.g. {"i2c1": "/dev/i2c-1"}.
func NewPeriph(paths map[string]string, log *slog.Logger) *Periph {
	if log == nil {
		log = slog.Default()
	}
	cp := make(map[string]string, len(paths))
	for k, v := range paths {
		cp[k] = v
	}
	return &Periph{
		paths:  cp,
		open:   map[string]i2c.BusCloser{},
		log:    log.With("svc", "platform"),
		openFn: i2creg.Open,
	}
}

var _ Reloadable = (*Periph)(nil)

func (p *Periph) ByID(id string) (drivers.I2C, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if b, ok := p.open[id]; ok {
		return b, true
	}
	path, ok := p.paths[id]
	if !ok {
		return nil, false
	}
	b, err := p.openFn(path)
	if err != nil {
		p.log.Error("open i2c bus failed", "bus", id, "path", path, "err", err)
		return nil, false
	}
	p.log.Info("i2c bus opened", "bus", id, "path", path)
	p.open[id] = b
	return b, true
}

// Stale returns the ids whose path differs in paths, or which paths drops.
func (p *Periph) Stale(paths map[string]string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for id, old := range p.paths {
		if nu, ok := paths[id]; !ok || nu != old {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// SetPaths replaces the id to path table. Handles of stale ids are closed;
// unbind their devices first.
func (p *Periph) SetPaths(paths map[string]string) error {
	stale := p.Stale(paths)
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for _, id := range stale {
		if b, ok := p.open[id]; ok {
			if err := b.Close(); err != nil {
				errs = append(errs, err)
			}
			delete(p.open, id)
			p.log.Info("i2c bus closed", "bus", id)
		}
	}
	p.paths = make(map[string]string, len(paths))
	for k, v := range paths {
		p.paths[k] = v
	}
	return errors.Join(errs...)
}

// Close releases every bus opened so far.
func (p *Periph) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for id, b := range p.open {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(p.open, id)
	}
	return errors.Join(errs...)
}
