package sqlx

import (
	"context"

	"code.cloudfoundry.org/dbx/logx"
)

type Migration struct {
	Name string
	Up   MigrationFunc
	Down MigrationFunc
}

type AppliedMigration struct {
	Version   int
	Name      string
	AppliedAt UTCTime
}

type MigrationFunc func(context.Context, logx.Logger, *Tx) error
