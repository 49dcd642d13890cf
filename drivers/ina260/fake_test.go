package ina260

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*fakeI2C)(nil)

var (
	errNACK     = errors.New("nack")
	errProtocol = errors.New("unexpected transaction shape")
)

type txCall struct {
	addr uint16
	w    []byte
	rlen int
}

// fakeI2C is a scripted INA260 register file. It records every transaction
// and flags any two transactions that were in flight at the same time.
type fakeI2C struct {
	mu    sync.Mutex
	regs  map[byte][2]byte
	err   error
	calls []txCall

	active  atomic.Int32
	overlap atomic.Bool

	hold    time.Duration
	gate    chan struct{} // when set, Tx waits for a receive or close
	entered chan struct{} // when set, signalled on entry (must be buffered)
}

func newFake() *fakeI2C {
	return &fakeI2C{regs: map[byte][2]byte{
		byte(RegCurrent):        {0x06, 0x40}, // 1600
		byte(RegBusVoltage):     {0x25, 0x80}, // 9600
		byte(RegPower):          {0x00, 0x64}, // 100
		byte(RegManufacturerID): {0x54, 0x49},
		byte(RegDieID):          {0x22, 0x70},
	}}
}

func (f *fakeI2C) set(reg Register, b0, b1 byte) {
	f.mu.Lock()
	f.regs[byte(reg)] = [2]byte{b0, b1}
	f.mu.Unlock()
}

func (f *fakeI2C) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	if f.active.Add(1) > 1 {
		f.overlap.Store(true)
	}
	defer f.active.Add(-1)

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.hold > 0 {
		time.Sleep(f.hold)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, txCall{addr: addr, w: append([]byte(nil), w...), rlen: len(r)})
	if f.err != nil {
		return f.err
	}
	if len(w) != 1 || len(r) != 2 {
		return errProtocol
	}
	v, ok := f.regs[w[0]]
	if !ok {
		return errNACK
	}
	copy(r, v[:])
	return nil
}

func (f *fakeI2C) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeI2C) lastCall() txCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}
