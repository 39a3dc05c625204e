package cmd

const (
	migrationsTableAlreadyExists = "migrations-table-already-exists"
	migrationsUpToDate           = "migrations-up-to-date"
)
