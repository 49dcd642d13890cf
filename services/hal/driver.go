package hal

import (
	"context"
	"log/slog"
	"reflect"
	"time"

	"ina260-go/services/hal/attr"

	"tinygo.org/x/drivers"
)

// ---- Driver model ----

// ProbeInput is everything a driver needs to bring up one instance. The bus
// handle is borrowed; the driver must not close it.
type ProbeInput struct {
	ID     string
	BindID string
	Bus    drivers.I2C
	BusID  string
	Addr   uint16 // 0 => driver default
	Params any
	Log    *slog.Logger
}

// Instance is a bound device as seen by the HAL.
type Instance interface {
	// Detail is published in the retained info payload.
	Detail() any
	// Remove releases driver-held resources. Attributes are already gone.
	Remove() error
}

// Driver binds devices whose type matches one of IDs. Probe registers the
// instance's attributes through reg; the HAL owns the resulting set.
type Driver interface {
	Name() string
	IDs() []string
	Probe(ctx context.Context, in ProbeInput, reg attr.Registrar) (Instance, error)
}

// DeviceConfig describes one device the HAL should bind.
type DeviceConfig struct {
	ID        string
	Type      string
	Bus       string
	Addr      uint16
	PollEvery time.Duration // 0 => no periodic publication
	Params    any
}

// Equal reports whether a and b would produce the same binding.
func (a DeviceConfig) Equal(b DeviceConfig) bool {
	return a.ID == b.ID && a.Type == b.Type && a.Bus == b.Bus && a.Addr == b.Addr &&
		a.PollEvery == b.PollEvery && reflect.DeepEqual(a.Params, b.Params)
}
