package sqlx

import (
	"context"
	"strings"

	"code.cloudfoundry.org/dbx/logx"
)

// QuoteIdentifier quotes a table or database name for the given engine.
func QuoteIdentifier(driver DBDriver, name string) string {
	if driver == DBDriverPostgres {
		return `"` + strings.Replace(name, `"`, `""`, -1) + `"`
	}
	return "`" + strings.Replace(name, "`", "``", -1) + "`"
}

// DatabaseExists reports whether the named database exists. The connection
// must be to a bootstrap database, not to the one being asked about.
func DatabaseExists(ctx context.Context, logger logx.Logger, conn Conn, name string) (bool, error) {
	var query string
	switch conn.Driver() {
	case DBDriverPostgres:
		query = `SELECT COUNT(1) FROM pg_database WHERE datname = $1`
	case DBDriverMySQL:
		query = `SELECT COUNT(1) FROM information_schema.schemata WHERE schema_name = ?`
	default:
		return false, ErrUnsupportedSQLDriver
	}

	var count int
	if err := conn.QueryRowContext(ctx, query, name).Scan(&count); err != nil {
		logger.Error(failedToQueryDatabase, err, logx.Data{Key: "database", Value: name})
		return false, err
	}

	return count > 0, nil
}

// CreateDatabase creates the named database if it does not already exist.
func CreateDatabase(ctx context.Context, logger logx.Logger, conn Conn, name string) error {
	exists, err := DatabaseExists(ctx, logger, conn, name)
	if err != nil {
		return err
	}
	if exists {
		logger.Debug(databaseAlreadyExists, logx.Data{Key: "database", Value: name})
		return nil
	}

	// CREATE DATABASE does not accept bind parameters in either engine.
	_, err = conn.ExecContext(ctx, "CREATE DATABASE "+QuoteIdentifier(conn.Driver(), name))
	if err != nil {
		logger.Error(failedToCreateDatabase, err, logx.Data{Key: "database", Value: name})
	}
	return err
}

// DropDatabase drops the named database if it exists.
func DropDatabase(ctx context.Context, logger logx.Logger, conn Conn, name string) error {
	_, err := conn.ExecContext(ctx, "DROP DATABASE IF EXISTS "+QuoteIdentifier(conn.Driver(), name))
	if err != nil {
		logger.Error(failedToDropDatabase, err, logx.Data{Key: "database", Value: name})
	}
	return err
}

// HasMigrationsTable reports whether the version table exists in the current
// database/schema.
func HasMigrationsTable(ctx context.Context, logger logx.Logger, conn Conn, tableName string) (bool, error) {
	var query string
	switch conn.Driver() {
	case DBDriverPostgres:
		query = `SELECT COUNT(1) FROM information_schema.tables WHERE table_name = $1 AND table_schema = current_schema()`
	case DBDriverMySQL:
		query = `SELECT COUNT(1) FROM information_schema.tables WHERE table_name = ? AND table_schema = DATABASE()`
	default:
		return false, ErrUnsupportedSQLDriver
	}

	var count int
	if err := conn.QueryRowContext(ctx, query, tableName).Scan(&count); err != nil {
		logger.Error(failedToQueryMigrations, err, logx.Data{Key: "table_name", Value: tableName})
		return false, err
	}

	return count > 0, nil
}

// DropMigrationsTable removes the version table itself, forgetting all
// recorded markers.
func DropMigrationsTable(ctx context.Context, logger logx.Logger, conn Conn, tableName string) error {
	_, err := conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+QuoteIdentifier(conn.Driver(), tableName))
	if err != nil {
		logger.Error(failedToDropTable, err, logx.Data{Key: "table_name", Value: tableName})
	}
	return err
}
