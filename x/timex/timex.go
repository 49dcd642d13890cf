package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// FromMs converts a millisecond count from configuration into a Duration.
// Non-positive values map to 0.
func FromMs(ms int) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// Ms is the inverse of FromMs, truncating sub-millisecond remainders.
func Ms(d time.Duration) int64 { return int64(d / time.Millisecond) }
