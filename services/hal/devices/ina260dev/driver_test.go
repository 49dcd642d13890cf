package ina260dev

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ina260-go/bus"
	"ina260-go/drivers/ina260"
	"ina260-go/errcode"
	"ina260-go/services/hal"
	"ina260-go/services/hal/attr"
	"ina260-go/services/hal/platform"
	"ina260-go/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// regFile answers single-register reads like an INA260 would.
type regFile struct {
	mu   sync.Mutex
	regs map[byte][2]byte
	err  error
	txs  int
}

func newRegFile() *regFile {
	return &regFile{regs: map[byte][2]byte{
		0x01: {0x06, 0x40}, // 1600 -> 2.0 A
		0x02: {0x25, 0x80}, // 9600 -> 12.0 V
		0x03: {0x00, 0x64}, // 100  -> 1.0 W
		0xFE: {0x54, 0x49},
		0xFF: {0x22, 0x70},
	}}
}

func (f *regFile) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs++
	if f.err != nil {
		return f.err
	}
	v, ok := f.regs[w[0]]
	if !ok || len(r) != 2 {
		return errors.New("nack")
	}
	copy(r, v[:])
	return nil
}

func probe(t *testing.T, f *regFile, params any) (*attr.Set, hal.Instance, error) {
	t.Helper()
	set := attr.NewSet()
	inst, err := Driver{}.Probe(context.Background(), hal.ProbeInput{
		ID: "psu", BindID: "b1", Bus: f, BusID: "i2c0", Params: params,
	}, set)
	return set, inst, err
}

func TestProbeRegistersThreeAttributes(t *testing.T) {
	set, inst, err := probe(t, newRegFile(), nil)
	require.NoError(t, err)
	require.NotNil(t, inst)
	assert.Equal(t, []string{types.AttrTotalCurrent, types.AttrTotalPower, types.AttrTotalVoltage}, set.Names())

	a, ok := set.Lookup(types.AttrTotalPower)
	require.True(t, ok)
	assert.Equal(t, attr.ModeReadOnly, a.Mode)
}

func TestShowValues(t *testing.T) {
	for _, tc := range []struct {
		name   string
		format ina260.Format
		want   map[string]string
	}{
		{"compat", ina260.FormatCompat, map[string]string{
			types.AttrTotalCurrent: "2.0\n",
			types.AttrTotalVoltage: "12.0\n",
			types.AttrTotalPower:   "1.0\n",
		}},
		{"padded", ina260.FormatPadded, map[string]string{
			types.AttrTotalCurrent: "2.00000\n",
			types.AttrTotalVoltage: "12.00000\n",
			types.AttrTotalPower:   "1.00000\n",
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			set, _, err := probe(t, newRegFile(), Params{Format: tc.format})
			require.NoError(t, err)
			for name, want := range tc.want {
				got, err := set.Show(context.Background(), name)
				require.NoError(t, err, name)
				assert.Equal(t, want, got, name)
			}
		})
	}
}

func TestShowPropagatesTransportError(t *testing.T) {
	f := newRegFile()
	set, _, err := probe(t, f, nil)
	require.NoError(t, err)

	f.err = errors.New("bus down")
	_, err = set.Show(context.Background(), types.AttrTotalCurrent)
	require.Error(t, err)
	var te *ina260.TransportError
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, errcode.Transport, errcode.Of(err))
}

func TestProbeVerifyID(t *testing.T) {
	f := newRegFile()
	_, _, err := probe(t, f, Params{VerifyID: true})
	require.NoError(t, err)
	assert.Equal(t, 2, f.txs)

	f = newRegFile()
	f.regs[0xFF] = [2]byte{0x22, 0x80}
	set, inst, err := probe(t, f, Params{VerifyID: true})
	require.ErrorIs(t, err, ina260.ErrUnexpectedID)
	assert.Nil(t, inst)
	assert.Zero(t, set.Len())
}

func TestProbeDoesNotTouchBusWithoutVerify(t *testing.T) {
	f := newRegFile()
	_, _, err := probe(t, f, &Params{})
	require.NoError(t, err)
	assert.Zero(t, f.txs)
}

func TestProbeRejectsBadParams(t *testing.T) {
	_, _, err := probe(t, newRegFile(), "nope")
	assert.Equal(t, errcode.InvalidParams, errcode.Of(err))

	_, _, err = probe(t, newRegFile(), Params{AcquireTimeout: -time.Second})
	assert.ErrorIs(t, err, ina260.ErrInvalidTimeout)
}

func TestDetail(t *testing.T) {
	_, inst, err := probe(t, newRegFile(), Params{Format: ina260.FormatPadded, AcquireTimeout: 250 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, types.PowerMonitorInfo{Format: "padded", AcquireTimeoutMs: 250}, inst.Detail())
	assert.NoError(t, inst.Remove())
}

// ---- through the HAL ----

func newHAL(t *testing.T, f *regFile) (*bus.Bus, *hal.HAL) {
	t.Helper()
	b := bus.NewBus(8)
	h := hal.New(b.NewConnection("hal"), hal.Options{
		Buses:     platform.Static{"i2c0": f},
		NewBindID: func() string { return "bind-1" },
	})
	require.NoError(t, h.AddDriver(New()))
	return b, h
}

func TestBindShowUnbind(t *testing.T) {
	ctx := context.Background()
	_, h := newHAL(t, newRegFile())

	require.NoError(t, h.Bind(ctx, hal.DeviceConfig{ID: "psu", Type: "ina260", Bus: "i2c0"}))
	v, err := h.Show(ctx, "psu", types.AttrTotalVoltage)
	require.NoError(t, err)
	assert.Equal(t, "12.0\n", v)

	bound := h.Bound()
	require.Len(t, bound, 1)
	assert.Equal(t, "ina260", bound[0].Driver)
	assert.Equal(t, "bind-1", bound[0].BindID)

	require.NoError(t, h.Unbind("psu"))
	_, err = h.Show(ctx, "psu", types.AttrTotalVoltage)
	assert.Equal(t, errcode.UnknownDevice, errcode.Of(err))
	assert.Empty(t, h.Bound())
}

func TestBindFailsOnWrongChip(t *testing.T) {
	f := newRegFile()
	f.regs[0xFE] = [2]byte{0x00, 0x00}
	_, h := newHAL(t, f)

	err := h.Bind(context.Background(), hal.DeviceConfig{
		ID: "psu", Type: "ina260", Bus: "i2c0", Params: Params{VerifyID: true},
	})
	assert.Equal(t, errcode.UnexpectedDevice, errcode.Of(err))
	assert.Empty(t, h.Bound())
}

func TestReadOverBus(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f := newRegFile()
	b, h := newHAL(t, f)
	require.NoError(t, h.Bind(ctx, hal.DeviceConfig{ID: "psu", Type: "ina260", Bus: "i2c0"}))

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() { h.Run(runCtx); close(done) }()
	defer func() { stop(); <-done }()

	cli := b.NewConnection("cli")
	waitReady(t, cli)

	msg, err := cli.RequestWait(ctx, cli.NewMessage(hal.TopicAttrRead("psu", types.AttrTotalPower), nil, false))
	require.NoError(t, err)
	assert.Equal(t, types.AttrReply{OK: true, Value: "1.0\n"}, msg.Payload)

	f.mu.Lock()
	f.err = errors.New("nack")
	f.mu.Unlock()
	msg, err = cli.RequestWait(ctx, cli.NewMessage(hal.TopicAttrRead("psu", types.AttrTotalPower), nil, false))
	require.NoError(t, err)
	assert.Equal(t, types.AttrReply{OK: false, Error: string(errcode.Transport)}, msg.Payload)
}

func waitReady(t *testing.T, c *bus.Connection) {
	t.Helper()
	sub := c.Subscribe(bus.T("hal", "state"))
	defer c.Unsubscribe(sub)
	deadline := time.After(2 * time.Second)
	for {
		select {
		case m := <-sub.Channel():
			if st, ok := m.Payload.(types.HALState); ok && st.Level == "ready" {
				return
			}
		case <-deadline:
			t.Fatal("hal never became ready")
		}
	}
}
