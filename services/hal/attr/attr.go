// Package attr holds the per-instance attribute table a driver fills at bind
// time. Each attribute is a named, read-only text endpoint backed by a show
// function supplied by the driver; there is no package-level registry.
package attr

import (
	"context"
	"errors"
	"io/fs"
	"sort"
	"sync"
)

var (
	ErrNoAttribute = errors.New("attr: no such attribute")
	ErrDuplicate   = errors.New("attr: attribute already registered")
	ErrInvalid     = errors.New("attr: attribute needs a name and a show function")
	ErrWritable    = errors.New("attr: only read-only attributes are supported")
)

// ModeReadOnly is the default permission for a show-only attribute.
const ModeReadOnly fs.FileMode = 0o444

// ShowFunc renders the current value. It may block on device I/O.
type ShowFunc func(ctx context.Context) (string, error)

type Attribute struct {
	Name string
	Mode fs.FileMode // 0 => ModeReadOnly
	Show ShowFunc
}

// Registrar is the narrow capability handed to drivers during probe.
type Registrar interface {
	Register(a Attribute) error
}

// Set is safe for concurrent use. Show runs outside the table lock so that a
// slow device read never blocks registration or removal.
type Set struct {
	mu    sync.RWMutex
	attrs map[string]Attribute
}

func NewSet() *Set { return &Set{attrs: map[string]Attribute{}} }

var _ Registrar = (*Set)(nil)

func (s *Set) Register(a Attribute) error {
	if a.Name == "" || a.Show == nil {
		return ErrInvalid
	}
	if a.Mode == 0 {
		a.Mode = ModeReadOnly
	}
	if a.Mode&0o222 != 0 {
		return ErrWritable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.attrs[a.Name]; exists {
		return ErrDuplicate
	}
	s.attrs[a.Name] = a
	return nil
}

// Remove reports whether name was registered.
func (s *Set) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.attrs[name]
	delete(s.attrs, name)
	return ok
}

// Clear removes every attribute.
func (s *Set) Clear() {
	s.mu.Lock()
	s.attrs = map[string]Attribute{}
	s.mu.Unlock()
}

func (s *Set) Lookup(name string) (Attribute, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attrs[name]
	return a, ok
}

func (s *Set) Show(ctx context.Context, name string) (string, error) {
	a, ok := s.Lookup(name)
	if !ok {
		return "", ErrNoAttribute
	}
	return a.Show(ctx)
}

// Names returns the registered names, sorted.
func (s *Set) Names() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.attrs))
	for n := range s.attrs {
		out = append(out, n)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attrs)
}
