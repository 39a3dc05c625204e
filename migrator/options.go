package migrator

import (
	"math/rand"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/dbx/metrics"
	"code.cloudfoundry.org/dbx/sqlx"
)

type Option func(*options)

// WithClock substitutes the clock used for backoff sleeps.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithStatter wires a metrics sink for retry counts and attempt durations.
func WithStatter(s metrics.Statter) Option {
	return func(o *options) {
		o.statter = s
	}
}

// WithLockTimeoutPredicate overrides lock-timeout classification, e.g. for
// engines this module does not ship a driver for. A predicate that always
// returns false disables the retry path entirely.
func WithLockTimeoutPredicate(p sqlx.LockTimeoutPredicate) Option {
	return func(o *options) {
		o.isLockTimeout = p
	}
}

// WithJitterSource substitutes the uniform [0, 1) source used for backoff
// jitter.
func WithJitterSource(f func() float64) Option {
	return func(o *options) {
		o.jitter = f
	}
}

type options struct {
	clock         clock.Clock
	statter       metrics.Statter
	isLockTimeout sqlx.LockTimeoutPredicate
	jitter        func() float64
}

func defaultOptions() *options {
	return &options{
		clock:         clock.NewClock(),
		statter:       metrics.NoopStatter{},
		isLockTimeout: sqlx.IsLockTimeout,
		jitter:        rand.Float64,
	}
}
