package utils

import (
	"time"
)

// IsTimestampStale reports whether timestamp is older than maxAge at now.
// A non-positive maxAge never goes stale.
func IsTimestampStale(timestamp, now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	return now.Sub(timestamp) > maxAge
}

// SecondsSince returns the seconds elapsed from timestamp to now, never negative
func SecondsSince(timestamp, now time.Time) float64 {
	if now.Before(timestamp) {
		return 0
	}
	return now.Sub(timestamp).Seconds()
}
