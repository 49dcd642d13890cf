package trace

import "time"

// Event is one I²C transaction. CBOR encoding uses integer keys for compactness.
type Event struct {
	Timestamp time.Time     `cbor:"1,keyasint"`
	DeviceID  string        `cbor:"2,keyasint"`
	BindID    string        `cbor:"3,keyasint"`
	Bus       string        `cbor:"4,keyasint,omitempty"`
	Addr      uint16        `cbor:"5,keyasint"`
	Write     []byte        `cbor:"6,keyasint,omitempty"`
	Read      []byte        `cbor:"7,keyasint,omitempty"`
	Duration  time.Duration `cbor:"8,keyasint"`
	Err       string        `cbor:"9,keyasint,omitempty"`
}

// Failed reports whether the transaction returned an error.
func (e Event) Failed() bool { return e.Err != "" }
