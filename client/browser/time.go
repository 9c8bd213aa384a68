package browser

import "time"

// durationFromMillis converts a DOMHighResTimeStamp to a time.Duration.
func durationFromMillis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
