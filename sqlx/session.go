package sqlx

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"math"
	"time"

	"github.com/Masterminds/squirrel"
)

// Session pins a single connection out of the pool so that session-scoped
// settings (the lock-wait ceiling in particular) apply to exactly the
// connection running the migration and never leak into pooled connections
// handed to other callers.
type Session struct {
	conn *sql.Conn

	driver  DBDriver
	flavor  DBFlavor
	version string
}

func (db *DB) Session(ctx context.Context) (*Session, error) {
	conn, err := db.Conn.Conn(ctx)
	if err != nil {
		return nil, err
	}

	return &Session{
		conn:    conn,
		driver:  db.driver,
		flavor:  db.flavor,
		version: db.version,
	}, nil
}

func (s *Session) Driver() DBDriver {
	return s.driver
}

// SetLockWait bounds how long any statement on this session may block waiting
// for a lock. A zero duration leaves the engine default in place. The setting
// does not survive reconnection; it must be applied again on every fresh
// session.
func (s *Session) SetLockWait(ctx context.Context, lockWait time.Duration) error {
	if lockWait <= 0 {
		return nil
	}

	switch s.driver {
	case DBDriverPostgres:
		_, err := s.conn.ExecContext(ctx,
			`SELECT set_config('lock_timeout', $1, false)`,
			fmt.Sprintf("%dms", lockWait.Milliseconds()),
		)
		return err
	case DBDriverMySQL:
		// innodb_lock_wait_timeout covers row locks, lock_wait_timeout covers
		// the metadata locks DDL contends on. Both are whole seconds, minimum 1.
		seconds := int64(math.Ceil(lockWait.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		_, err := s.conn.ExecContext(ctx, fmt.Sprintf(
			"SET SESSION innodb_lock_wait_timeout = %d, lock_wait_timeout = %d",
			seconds, seconds,
		))
		return err
	}

	return nil
}

func (s *Session) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := s.conn.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &Tx{
		tx:      tx,
		driver:  s.driver,
		flavor:  s.flavor,
		version: s.version,
	}, nil
}

func (s *Session) Exec(query string, args ...interface{}) (sql.Result, error) {
	return s.conn.ExecContext(context.Background(), query, args...)
}

func (s *Session) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return s.conn.ExecContext(ctx, query, args...)
}

func (s *Session) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return s.conn.QueryContext(context.Background(), query, args...)
}

func (s *Session) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return s.conn.QueryContext(ctx, query, args...)
}

func (s *Session) QueryRowContext(ctx context.Context, query string, args ...interface{}) squirrel.RowScanner {
	return s.conn.QueryRowContext(ctx, query, args...)
}

// Close returns the underlying connection to the pool.
func (s *Session) Close() error {
	return s.conn.Close()
}

// Discard drops the underlying connection from the pool entirely. Required
// after a lock-timeout failure: the connection's transactional state is
// poisoned and must not be recycled.
func (s *Session) Discard() {
	_ = s.conn.Raw(func(interface{}) error {
		return driver.ErrBadConn
	})
}

func (s *Session) placeholderFormat() squirrel.PlaceholderFormat {
	return placeholderFormat(s.driver)
}
