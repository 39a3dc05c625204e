package sqlx

import (
	"context"

	"code.cloudfoundry.org/dbx/logx"
	"github.com/Masterminds/squirrel"
)

// RollbackMigrations undoes applied migrations in reverse order: the most
// recent one only, or every applied migration when all is set. Each Down and
// its version-row delete commit together, mirroring ApplyMigrations.
func RollbackMigrations(
	ctx context.Context,
	logger logx.Logger,
	sess *Session,
	tableName string,
	migrations []Migration,
	all bool,
) error {
	migrationsLogger := logger.WithName("rollback-migrations").WithData(logx.Data{Key: "table_name", Value: tableName})

	migrationsLogger.Info(starting)
	if len(migrations) == 0 {
		return nil
	}

	appliedMigrations, err := RetrieveAppliedMigrations(ctx, migrationsLogger, sess, tableName)
	if err != nil {
		return err
	}
	migrationsLogger.Debug(retrievedAppliedMigrations, logx.Data{Key: "versions", Value: appliedMigrations})

	for version := len(migrations) - 1; version >= 0; version-- {
		migration := migrations[version]
		_, ok := appliedMigrations[version]

		migrationLogger := logger.WithData(logx.Data{Key: "version", Value: version}, logx.Data{Key: "name", Value: migration.Name})

		if !ok {
			migrationLogger.Debug(skippedUnappliedMigration)
			continue
		}

		err = rollbackMigration(ctx, migrationLogger, sess, tableName, version, migration)
		if err != nil {
			return err
		}
		if !all {
			return nil
		}
	}

	return nil
}

func rollbackMigration(
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
			logger.Error(failedToRollbackMigration, err)
		}
		err = Commit(logger, tx, err)
	}()

	err = migration.Down(ctx, logger, tx)
	if err != nil {
		return
	}

	_, err = squirrel.Delete(QuoteIdentifier(tx.Driver(), tableName)).
		Where(squirrel.Eq{"version": version}).
		PlaceholderFormat(tx.placeholderFormat()).
		RunWith(tx).
		ExecContext(ctx)

	logger.Debug(finished)

	return
}
