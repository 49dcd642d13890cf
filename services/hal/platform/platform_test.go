package platform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

type fakeBus struct {
	name   string
	closed int
}

func (f *fakeBus) String() string                    { return f.name }
func (f *fakeBus) Tx(addr uint16, w, r []byte) error { return nil }
func (f *fakeBus) SetSpeed(physic.Frequency) error   { return nil }
func (f *fakeBus) Close() error                      { f.closed++; return nil }

var _ i2c.BusCloser = (*fakeBus)(nil)

func TestStatic(t *testing.T) {
	b := &fakeBus{name: "a"}
	s := Static{"i2c0": b, "nil": nil}

	got, ok := s.ByID("i2c0")
	require.True(t, ok)
	assert.Same(t, b, got)

	_, ok = s.ByID("nil")
	assert.False(t, ok)
	_, ok = s.ByID("i2c9")
	assert.False(t, ok)
	assert.Equal(t, []string{"i2c0", "nil"}, s.IDs())
}

func TestPeriph_OpensLazilyOnceAndCloses(t *testing.T) {
	p := NewPeriph(map[string]string{"i2c1": "/dev/i2c-1"}, nil)
	opened := map[string]*fakeBus{}
	p.openFn = func(name string) (i2c.BusCloser, error) {
		b := &fakeBus{name: name}
		opened[name] = b
		return b, nil
	}

	b1, ok := p.ByID("i2c1")
	require.True(t, ok)
	b2, ok := p.ByID("i2c1")
	require.True(t, ok)
	assert.Same(t, b1, b2)
	assert.Len(t, opened, 1)

	_, ok = p.ByID("unknown")
	assert.False(t, ok)

	require.NoError(t, p.Close())
	assert.Equal(t, 1, opened["/dev/i2c-1"].closed)
}

func TestPeriph_OpenFailure(t *testing.T) {
	p := NewPeriph(map[string]string{"i2c1": "/dev/i2c-1"}, nil)
	p.openFn = func(string) (i2c.BusCloser, error) { return nil, errors.New("no such file") }

	_, ok := p.ByID("i2c1")
	assert.False(t, ok)
}

func TestPeriph_SetPathsClosesStale(t *testing.T) {
	p := NewPeriph(map[string]string{"i2c1": "/dev/i2c-1", "i2c2": "/dev/i2c-2", "i2c3": "/dev/i2c-3"}, nil)
	opened := map[string]*fakeBus{}
	p.openFn = func(name string) (i2c.BusCloser, error) {
		b := &fakeBus{name: name}
		opened[name] = b
		return b, nil
	}
	for _, id := range []string{"i2c1", "i2c2", "i2c3"} {
		_, ok := p.ByID(id)
		require.True(t, ok)
	}

	next := map[string]string{"i2c1": "/dev/i2c-1", "i2c2": "/dev/i2c-7"}
	assert.Equal(t, []string{"i2c2", "i2c3"}, p.Stale(next))
	require.NoError(t, p.SetPaths(next))

	assert.Zero(t, opened["/dev/i2c-1"].closed)
	assert.Equal(t, 1, opened["/dev/i2c-2"].closed)
	assert.Equal(t, 1, opened["/dev/i2c-3"].closed)

	_, ok := p.ByID("i2c3")
	assert.False(t, ok)
	b, ok := p.ByID("i2c2")
	require.True(t, ok)
	assert.Equal(t, "/dev/i2c-7", b.(*fakeBus).name)
}
