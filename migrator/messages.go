package migrator

const (
	starting = "starting"
	finished = "finished"

	lockTimeoutRetrying      = "lock-timeout-retrying"
	lockWaitRetriesExhausted = "lock-wait-retries-exhausted"
	failedToRunMigrations    = "failed-to-run-migrations"
)
