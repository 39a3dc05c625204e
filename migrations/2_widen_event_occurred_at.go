package migrations

import (
	"context"

	"code.cloudfoundry.org/dbx/logx"
	"code.cloudfoundry.org/dbx/sqlx"
)

// The naive column already holds UTC wall-clock values (sessions are pinned
// to UTC), so the USING clause reinterprets rather than converts.
var widenEventOccurredAtPostgres = `
ALTER TABLE event
	ALTER COLUMN occurred_at TYPE TIMESTAMP WITH TIME ZONE
	USING occurred_at AT TIME ZONE 'UTC'
`

var narrowEventOccurredAtPostgres = `
ALTER TABLE event
	ALTER COLUMN occurred_at TYPE TIMESTAMP WITHOUT TIME ZONE
	USING occurred_at AT TIME ZONE 'UTC'
`

var widenEventOccurredAtMySQL = `ALTER TABLE event MODIFY occurred_at TIMESTAMP NOT NULL`

var narrowEventOccurredAtMySQL = `ALTER TABLE event MODIFY occurred_at DATETIME NOT NULL`

func widenEventOccurredAtUp(ctx context.Context, logger logx.Logger, tx *sqlx.Tx) error {
	logger = logger.WithName("widen-event-occurred-at")
	logger.Debug(starting)
	defer logger.Debug(finished)

	var err error

	if tx.Driver() == sqlx.DBDriverMySQL {
		_, err = tx.ExecContext(ctx, widenEventOccurredAtMySQL)
	} else {
		_, err = tx.ExecContext(ctx, widenEventOccurredAtPostgres)
	}
	return err
}

func widenEventOccurredAtDown(ctx context.Context, logger logx.Logger, tx *sqlx.Tx) error {
	logger = logger.WithName("widen-event-occurred-at")
	logger.Debug(starting)
	defer logger.Debug(finished)

	var err error

	if tx.Driver() == sqlx.DBDriverMySQL {
		_, err = tx.ExecContext(ctx, narrowEventOccurredAtMySQL)
	} else {
		_, err = tx.ExecContext(ctx, narrowEventOccurredAtPostgres)
	}
	return err
}
