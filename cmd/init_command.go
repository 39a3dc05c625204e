package cmd

import (
	"context"

	"code.cloudfoundry.org/dbx/cmd/flags"
	"code.cloudfoundry.org/dbx/sqlx"
)

// InitCommand creates the configured database itself, connecting through the
// engine's bootstrap database.
type InitCommand struct {
	Logger flags.LagerFlag
	DB     flags.DBFlag `group:"DB" namespace:"db"`
}

func (cmd InitCommand) Execute([]string) error {
	logger := cmd.Logger.Logger("dbx").WithName("init")
	ctx := context.Background()

	conn, err := cmd.DB.ConnectBootstrap(ctx, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	return sqlx.CreateDatabase(ctx, logger, conn, cmd.DB.Schema)
}
