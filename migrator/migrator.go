package migrator

import (
	"context"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/dbx/logx"
	"code.cloudfoundry.org/dbx/metrics"
	"code.cloudfoundry.org/dbx/sqlx"
)

const (
	metricRetries         = "dbx.migrations.retries"
	metricAttemptDuration = "dbx.migrations.attempt.duration"
)

// Migrator executes migration runs against a live database without blocking
// concurrent traffic indefinitely: every attempt runs on a fresh session with
// the policy's lock-wait ceiling applied, and attempts that fail on a lock
// timeout are retried with exponential backoff. Steps that committed in an
// earlier attempt are never re-executed; the version table decides what is
// still pending on every attempt.
type Migrator struct {
	db     *sqlx.DB
	policy Policy

	clock         clock.Clock
	statter       metrics.Statter
	isLockTimeout sqlx.LockTimeoutPredicate
	jitter        func() float64
}

func New(db *sqlx.DB, policy Policy, opts ...Option) *Migrator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Migrator{
		db:            db,
		policy:        policy,
		clock:         o.clock,
		statter:       o.statter,
		isLockTimeout: o.isLockTimeout,
		jitter:        o.jitter,
	}
}

// ApplyMigrations applies every pending migration in order.
func (m *Migrator) ApplyMigrations(
	ctx context.Context,
	logger logx.Logger,
	tableName string,
	migrations []sqlx.Migration,
) error {
	return m.run(ctx, logger.WithName("up"), func(sess *sqlx.Session) error {
		return sqlx.ApplyMigrations(ctx, logger, sess, tableName, migrations)
	})
}

// RollbackMigrations rolls back the most recently applied migration, or all
// of them when all is set.
func (m *Migrator) RollbackMigrations(
	ctx context.Context,
	logger logx.Logger,
	tableName string,
	migrations []sqlx.Migration,
	all bool,
) error {
	return m.run(ctx, logger.WithName("down"), func(sess *sqlx.Session) error {
		return sqlx.RollbackMigrations(ctx, logger, sess, tableName, migrations, all)
	})
}

func (m *Migrator) run(ctx context.Context, logger logx.Logger, step func(*sqlx.Session) error) error {
	logger.Info(starting, logx.Data{Key: "lock_wait", Value: m.policy.LockWait.String()}, logx.Data{Key: "max_retries", Value: m.policy.MaxRetries})

	for attempt := 0; ; attempt++ {
		err := m.attempt(ctx, step)
		if err == nil {
			logger.Info(finished, logx.Data{Key: "attempts", Value: attempt + 1})
			return nil
		}

		// Only lock-timeout failures are worth another attempt. Everything
		// else (bad SQL, constraint violations, lost connectivity) surfaces
		// immediately with whatever steps committed still durably recorded.
		if !m.isLockTimeout(err) {
			logger.Error(failedToRunMigrations, err, logx.Data{Key: "attempt", Value: attempt})
			return err
		}
		if attempt >= m.policy.MaxRetries {
			logger.Error(lockWaitRetriesExhausted, err, logx.Data{Key: "attempts", Value: attempt + 1})
			return err
		}

		delay := backoffDelay(attempt, m.jitter)
		logger.Info(lockTimeoutRetrying, logx.Data{
			Key:   "attempt",
			Value: attempt + 1,
		}, logx.Data{
			Key:   "max_retries",
			Value: m.policy.MaxRetries,
		}, logx.Data{
			Key:   "delay",
			Value: delay.String(),
		})
		m.statter.Inc(metricRetries, 1)
		m.clock.Sleep(delay)
	}
}

func (m *Migrator) attempt(ctx context.Context, step func(*sqlx.Session) error) error {
	start := m.clock.Now()
	defer func() {
		m.statter.TimingDuration(metricAttemptDuration, m.clock.Since(start))
	}()

	sess, err := m.db.Session(ctx)
	if err != nil {
		return err
	}

	if err := sess.SetLockWait(ctx, m.policy.LockWait); err != nil {
		sess.Discard()
		return err
	}

	if err := step(sess); err != nil {
		// The session's transactional state cannot be trusted after a failed
		// step; drop the connection rather than return it to the pool.
		sess.Discard()
		return err
	}

	return sess.Close()
}
