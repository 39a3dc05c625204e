package migrator

import "time"

const (
	backoffBase = 500 * time.Millisecond
	backoffCap  = 30 * time.Second
)

// backoffDelay computes min(backoffCap, backoffBase * 2^attempt) scaled by a
// uniform factor in [0.5, 1.0). The jitter keeps concurrent migration runners
// from retrying in lockstep against the same lock.
func backoffDelay(attempt int, jitter func() float64) time.Duration {
	delay := backoffBase
	for i := 0; i < attempt && delay < backoffCap; i++ {
		delay *= 2
	}
	if delay > backoffCap {
		delay = backoffCap
	}

	return time.Duration(float64(delay) * (0.5 + jitter()/2))
}
