package cmd

import (
	"context"

	"code.cloudfoundry.org/dbx/cmd/flags"
	"code.cloudfoundry.org/dbx/sqlx"
)

// DestroyCommand drops the configured database entirely.
type DestroyCommand struct {
	Logger flags.LagerFlag
	DB     flags.DBFlag `group:"DB" namespace:"db"`

	YesIKnow bool `long:"yes-i-know" description:"Confirm that the database will be dropped"`
}

func (cmd DestroyCommand) Execute([]string) error {
	if !cmd.YesIKnow {
		return ErrConfirmationRequired
	}

	logger := cmd.Logger.Logger("dbx").WithName("destroy")
	ctx := context.Background()

	conn, err := cmd.DB.ConnectBootstrap(ctx, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	return sqlx.DropDatabase(ctx, logger, conn, cmd.DB.Schema)
}
