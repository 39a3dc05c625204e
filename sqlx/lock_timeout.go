package sqlx

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

const (
	// ER_LOCK_WAIT_TIMEOUT; raised both when innodb_lock_wait_timeout expires
	// on a row lock and when lock_wait_timeout expires on a metadata lock.
	mysqlErrLockWaitTimeout uint16 = 1205

	// SQLSTATE lock_not_available, raised when lock_timeout expires.
	postgresErrLockNotAvailable = pq.ErrorCode("55P03")
)

// LockTimeoutPredicate reports whether an error means the session's lock-wait
// ceiling was exceeded. Engines without a lock-wait ceiling should supply a
// predicate that always returns false.
type LockTimeoutPredicate func(error) bool

// IsLockTimeout is the default predicate, covering the engines this module
// ships drivers for. Only this failure class is safe to retry; everything
// else surfaces immediately.
func IsLockTimeout(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrLockWaitTimeout
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == postgresErrLockNotAvailable
	}

	return false
}
