// Package platform resolves configured bus ids to I²C bus handles.
package platform

import (
	"sort"

	"tinygo.org/x/drivers"
)

// BusProvider hands out shared bus handles by id (e.g. "i2c1"). Handles are
// owned by the provider; callers borrow them and never close them.
type BusProvider interface {
	ByID(id string) (drivers.I2C, bool)
}

// Reloadable is a provider whose id to path table can change at runtime.
type Reloadable interface {
	BusProvider
	// Stale returns the ids whose handles paths would invalidate.
	Stale(paths map[string]string) []string
	// SetPaths closes the stale handles and installs paths.
	SetPaths(paths map[string]string) error
}

// Static is a fixed map of buses, used by tests and by callers that open
// their buses themselves.
type Static map[string]drivers.I2C

func (s Static) ByID(id string) (drivers.I2C, bool) {
	b, ok := s[id]
	return b, ok && b != nil
}

// IDs returns the bus ids, sorted.
func (s Static) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
