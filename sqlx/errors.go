package sqlx

import "errors"

var (
	ErrUnsupportedSQLDriver        = errors.New("unsupported sql driver")
	ErrUnsupportedTLSConfig        = errors.New("tls configuration is not supported for this sql driver")
	ErrFailedToEstablishConnection = errors.New("failed to establish connection")

	ErrMigrationsOutOfSync = errors.New("migrations out of sync: not all migrations applied")

	ErrUnknownColumnKind = errors.New("unknown timestamp column kind")
)
