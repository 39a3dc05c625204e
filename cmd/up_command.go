package cmd

import (
	"context"

	"code.cloudfoundry.org/dbx/cmd/flags"
	"code.cloudfoundry.org/dbx/migrations"
	"code.cloudfoundry.org/dbx/migrator"
)

type UpCommand struct {
	Logger flags.LagerFlag
	DB     flags.DBFlag     `group:"DB" namespace:"db"`
	StatsD flags.StatsDFlag `group:"StatsD" namespace:"statsd"`

	MigrationsTableName string `long:"migrations-table-name" description:"Name of the table which holds migration information" default:"dbx_migrations"`
	LockWait            string `long:"lock-wait" description:"Session lock-wait ceiling applied while migrating (0 disables)" default:"1s"`
	LockWaitRetries     int    `long:"lock-wait-retries" description:"Number of retries after a lock-timeout failure" default:"5"`
}

func (cmd UpCommand) Execute([]string) error {
	logger := cmd.Logger.Logger("dbx").WithName("up")
	ctx := context.Background()

	conn, err := cmd.DB.Connect(ctx, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	statter, err := cmd.StatsD.Statter(logger)
	if err != nil {
		return err
	}

	m := migrator.New(conn,
		migrator.ResolvePolicy(cmd.LockWait, cmd.LockWaitRetries),
		migrator.WithStatter(statter),
	)

	return m.ApplyMigrations(ctx, logger, cmd.MigrationsTableName, migrations.Migrations)
}
