package types

// ---- Common HAL state (retained) ----

// Retained on hal/state.
type HALState struct {
	Level  string `json:"level"`  // e.g. "idle", "ready", "stopped"
	Status string `json:"status"` // freeform short code
	TSms   int64  `json:"ts_ms"`
}

// Link is the state reported for a bound device.
type Link string

const (
	LinkBound    Link = "bound"
	LinkUp       Link = "up"
	LinkDegraded Link = "degraded"
	LinkUnbound  Link = "unbound"
)

// Retained on hal/dev/<id>/status.
type DeviceStatus struct {
	Link  Link   `json:"link"`
	TSms  int64  `json:"ts_ms"`
	Error string `json:"error,omitempty"`
}

// Retained on hal/dev/<id>/info while the device is bound.
type DeviceInfo struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Driver     string   `json:"driver"`
	BindID     string   `json:"bind_id"` // changes on every bind
	Bus        string   `json:"bus"`
	Addr       uint16   `json:"addr"`
	Attributes []string `json:"attributes"`
	Detail     any      `json:"detail,omitempty"`
}

// Retained on hal/dev/<id>/attr/<name>/value by the poller.
type AttrValue struct {
	Value string `json:"value"`
	TSms  int64  `json:"ts_ms"`
}

// ---- Replies ----

type OKReply struct {
	OK bool `json:"ok"`
}

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Reply to hal/dev/<id>/attr/<name>/read.
type AttrReply struct {
	OK    bool   `json:"ok"`
	Value string `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// ---- Controls (hal/ctrl/<verb>) ----

type BindRequest struct{ ID string }   // verb: "bind"
type UnbindRequest struct{ ID string } // verb: "unbind"

// Reply to verb "list".
type DeviceList struct {
	Bound      []DeviceInfo `json:"bound"`
	Configured []string     `json:"configured"`
}

// Retained on svc/heartbeat.
type Heartbeat struct {
	Seq      uint64 `json:"seq"`
	UptimeMs int64  `json:"uptime_ms"`
	TSms     int64  `json:"ts_ms"`
}
