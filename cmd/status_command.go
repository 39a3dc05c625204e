package cmd

import (
	"context"

	"code.cloudfoundry.org/dbx/cmd/flags"
	"code.cloudfoundry.org/dbx/logx"
	"code.cloudfoundry.org/dbx/migrations"
	"code.cloudfoundry.org/dbx/sqlx"
)

type StatusCommand struct {
	Logger flags.LagerFlag
	DB     flags.DBFlag `group:"DB" namespace:"db"`

	MigrationsTableName string `long:"migrations-table-name" description:"Name of the table which holds migration information" default:"dbx_migrations"`
}

func (cmd StatusCommand) Execute([]string) error {
	logger := cmd.Logger.Logger("dbx").WithName("status")
	ctx := context.Background()

	conn, err := cmd.DB.Connect(ctx, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	upToDate, err := sqlx.VerifyAppliedMigrations(ctx, logger, conn, cmd.MigrationsTableName, migrations.Migrations)
	if err != nil {
		return err
	}

	if !upToDate {
		return sqlx.ErrMigrationsOutOfSync
	}

	logger.Info(migrationsUpToDate, logx.Data{Key: "count", Value: len(migrations.Migrations)})
	return nil
}
