package migrations

import (
	"context"

	"code.cloudfoundry.org/dbx/logx"
	"code.cloudfoundry.org/dbx/sqlx"
)

var createEventTableMySQL = `
CREATE TABLE IF NOT EXISTS event
(
  id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
  uuid BINARY(16) NOT NULL UNIQUE,
  name VARCHAR(255) NOT NULL,
  occurred_at DATETIME NOT NULL
)
`

var createEventTablePostgres = `
CREATE TABLE IF NOT EXISTS event
(
	id BIGSERIAL NOT NULL PRIMARY KEY,
	uuid BYTEA NOT NULL UNIQUE,
	name VARCHAR(255) NOT NULL,
	occurred_at TIMESTAMP WITHOUT TIME ZONE NOT NULL
)`

var deleteEventTable = `DROP TABLE event`

func createEventTableUp(ctx context.Context, logger logx.Logger, tx *sqlx.Tx) error {
	logger = logger.WithName("create-event-table")
	logger.Debug(starting)
	defer logger.Debug(finished)

	var err error

	if tx.Driver() == sqlx.DBDriverMySQL {
		_, err = tx.ExecContext(ctx, createEventTableMySQL)
	} else {
		_, err = tx.ExecContext(ctx, createEventTablePostgres)
	}
	return err
}

func createEventTableDown(ctx context.Context, logger logx.Logger, tx *sqlx.Tx) error {
	logger = logger.WithName("create-event-table")
	logger.Debug(starting)
	defer logger.Debug(finished)

	_, err := tx.ExecContext(ctx, deleteEventTable)

	return err
}
