package migrations

import (
	"code.cloudfoundry.org/dbx/sqlx"
)

var TableName = "dbx_migrations"

var Migrations = []sqlx.Migration{
	{
		Name: "create_event_table",
		Up:   createEventTableUp,
		Down: createEventTableDown,
	},
	{
		Name: "widen_event_occurred_at_to_offset_aware",
		Up:   widenEventOccurredAtUp,
		Down: widenEventOccurredAtDown,
	},
}

const (
	starting = "starting"
	finished = "finished"
)
