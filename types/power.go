package types

// ------------------------
// Power monitor (ina260)
// ------------------------

// Detail of DeviceInfo for an ina260 instance.
type PowerMonitorInfo struct {
	Format           string `json:"format"` // "compat" | "padded"
	AcquireTimeoutMs int64  `json:"acquire_timeout_ms"`
	VerifiedID       bool   `json:"verified_id"`
}

// Attribute names exposed by a power monitor instance.
const (
	AttrTotalCurrent = "total_current"
	AttrTotalVoltage = "total_voltage"
	AttrTotalPower   = "total_power"
)
