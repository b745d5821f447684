package util

import (
	"math"
	"time"
)

// MaxVisibilityTimeout is upper limit of SQS visibility timeout (12 hours)
const MaxVisibilityTimeout = 12 * time.Hour

// ExpBackoff returns base * 2^(attempt-1) capped by limit. attempt starts from 1
// and smaller value is treated as 1.
func ExpBackoff(base time.Duration, attempt int, limit time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}

	wait := float64(base) * math.Pow(2.0, float64(attempt-1))
	if limit > 0 && wait > float64(limit) {
		return limit
	}
	return time.Duration(wait)
}
