package sqlx

import (
	"context"
	"database/sql"

	"code.cloudfoundry.org/dbx/logx"
	"github.com/Masterminds/squirrel"
)

// Conn is the querying surface shared by DB and Session.
type Conn interface {
	Driver() DBDriver
	Exec(query string, args ...interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) squirrel.RowScanner
}

// RetrieveAppliedMigrations reads the version table fresh from the database.
// The table is the sole source of truth for what has been applied; no
// in-process state is consulted.
func RetrieveAppliedMigrations(
	ctx context.Context,
	logger logx.Logger,
	conn Conn,
	tableName string,
) (map[int]AppliedMigration, error) {
	rows, err := squirrel.Select("version", "name", "applied_at").
		From(QuoteIdentifier(conn.Driver(), tableName)).
		RunWith(conn).
		QueryContext(ctx)

	if err != nil {
		return nil, err
	}

	defer rows.Close()
	var (
		version   int
		name      string
		appliedAt UTCTime
	)

	versions := make(map[int]AppliedMigration)
	for rows.Next() {
		err = rows.Scan(&version, &name, &appliedAt)
		if err != nil {
			logger.Error(failedToParseAppliedMigration, err)

			return nil, err
		}
		versions[version] = AppliedMigration{
			Version:   version,
			Name:      name,
			AppliedAt: appliedAt,
		}
	}

	err = rows.Err()
	if err != nil {
		logger.Error(failedToQueryMigrations, err)
		return nil, err
	}

	return versions, nil
}
