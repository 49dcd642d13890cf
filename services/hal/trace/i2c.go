package trace

import (
	"time"

	"tinygo.org/x/drivers"
)

// Source labels the events produced by one wrapped bus handle.
type Source struct {
	DeviceID string
	BindID   string
	Bus      string
}

// I2C decorates a drivers.I2C and logs every transaction after it completes.
type I2C struct {
	inner drivers.I2C
	log   Logger
	src   Source
	now   func() time.Time
}

// Wrap returns inner unchanged when l is nil.
func Wrap(inner drivers.I2C, l Logger, src Source) drivers.I2C {
	if l == nil {
		return inner
	}
	return &I2C{inner: inner, log: l, src: src, now: time.Now}
}

func (t *I2C) Tx(addr uint16, w, r []byte) error {
	start := t.now()
	err := t.inner.Tx(addr, w, r)
	ev := Event{
		Timestamp: start,
		DeviceID:  t.src.DeviceID,
		BindID:    t.src.BindID,
		Bus:       t.src.Bus,
		Addr:      addr,
		Write:     append([]byte(nil), w...),
		Duration:  t.now().Sub(start),
	}
	if err != nil {
		ev.Err = err.Error()
	} else {
		ev.Read = append([]byte(nil), r...)
	}
	t.log.Log(ev)
	return err
}

var _ drivers.I2C = (*I2C)(nil)
