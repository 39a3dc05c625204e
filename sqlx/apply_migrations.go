package sqlx

import (
	"context"
	"time"

	"code.cloudfoundry.org/dbx/logx"
	"github.com/Masterminds/squirrel"
)

// ApplyMigrations runs every migration not yet recorded in the version table,
// in declared order, on the supplied session. Each migration and its version
// row are committed in a single transaction, so a migration is durably marked
// applied exactly when its schema change is. Already-recorded migrations are
// skipped, which is what makes a rerun after a crash or lock timeout safe.
func ApplyMigrations(
	ctx context.Context,
	logger logx.Logger,
	sess *Session,
	tableName string,
	migrations []Migration,
) error {
	createTableLogger := logger.WithName("create-migrations-table").WithData(logx.Data{Key: "table_name", Value: tableName})
	if err := createMigrationsTable(ctx, createTableLogger, sess, tableName); err != nil {
		return err
	}

	migrationsLogger := logger.WithName("apply-migrations").WithData(logx.Data{
		Key:   "table_name",
		Value: tableName,
	})

	if len(migrations) == 0 {
		return nil
	}

	appliedMigrations, err := RetrieveAppliedMigrations(ctx, migrationsLogger, sess, tableName)
	if err != nil {
		return err
	}
	migrationsLogger.Debug(retrievedAppliedMigrations, logx.Data{Key: "versions", Value: appliedMigrations})

	for i, migration := range migrations {
		version := i
		migrationLogger := logger.WithData(logx.Data{Key: "version", Value: version}, logx.Data{Key: "name", Value: migration.Name})

		_, ok := appliedMigrations[version]
		if ok {
			migrationLogger.Debug(skippedAppliedMigration)
		} else {
			err = applyMigration(ctx, migrationLogger, sess, tableName, version, migration)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func createMigrationsTable(
	ctx context.Context,
	logger logx.Logger,
	sess *Session,
	tableName string,
) (err error) {
	var tx *Tx
	tx, err = sess.BeginTx(ctx, nil)

	if err != nil {
		logger.Error(failedToStartTransaction, err)
		return
	}

	defer func() {
		if err != nil {
			logger.Error(failedToCreateTable, err)
		}
		err = Commit(logger, tx, err)
	}()

	_, err = tx.ExecContext(ctx, createMigrationsTableStatement(sess.Driver(), tableName))

	return
}

func createMigrationsTableStatement(driver DBDriver, tableName string) string {
	if driver == DBDriverPostgres {
		return `CREATE TABLE IF NOT EXISTS ` + QuoteIdentifier(driver, tableName) +
			` (id BIGSERIAL PRIMARY KEY, version INTEGER, name VARCHAR(255), applied_at TIMESTAMP)`
	}
	return `CREATE TABLE IF NOT EXISTS ` + QuoteIdentifier(driver, tableName) +
		` (id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY, version INTEGER, name VARCHAR(255), applied_at DATETIME)`
}

func applyMigration(
	ctx context.Context,
	logger logx.Logger,
	sess *Session,
	tableName string,
	version int,
	migration Migration,
) (err error) {
	logger.Debug(starting)

	tx, err := sess.BeginTx(ctx, nil)
	if err != nil {
		logger.Error(failedToStartTransaction, err)
		return
	}

	defer func() {
		if err != nil {
			logger.Error(failedToApplyMigration, err)
		}
		err = Commit(logger, tx, err)
	}()

	err = migration.Up(ctx, logger, tx)
	if err != nil {
		return
	}

	_, err = squirrel.Insert(QuoteIdentifier(tx.Driver(), tableName)).
		Columns("version", "name", "applied_at").
		Values(version, migration.Name, NewUTCTime(time.Now())).
		PlaceholderFormat(tx.placeholderFormat()).
		RunWith(tx).
		ExecContext(ctx)

	logger.Debug(finished)

	return
}
