package migrator

import "time"

const (
	DefaultLockWait   = time.Second
	DefaultMaxRetries = 5
)

// Policy bounds a migration run: how long any statement may wait on a lock,
// and how many times a lock-timeout failure is retried. Resolved once per run
// and immutable afterwards.
type Policy struct {
	LockWait   time.Duration
	MaxRetries int
}

// ResolvePolicy turns operator settings into a Policy. A lock wait of "0"
// disables the ceiling entirely, leaving the engine default in place.
// Unparseable durations fall back to the default rather than failing the run;
// negative retry counts clamp to zero.
func ResolvePolicy(lockWait string, maxRetries int) Policy {
	d, err := time.ParseDuration(lockWait)
	if err != nil || d < 0 {
		d = DefaultLockWait
	}

	if maxRetries < 0 {
		maxRetries = 0
	}

	return Policy{
		LockWait:   d,
		MaxRetries: maxRetries,
	}
}

// DefaultPolicy is ResolvePolicy with both settings at their defaults.
func DefaultPolicy() Policy {
	return Policy{
		LockWait:   DefaultLockWait,
		MaxRetries: DefaultMaxRetries,
	}
}
