package flags

import "errors"

var ErrInvalidCertificate = errors.New("failed to append certificate to pool")

const (
	failedToReadCertificate     = "failed-to-read-certificate"
	failedToParseTLSCredentials = "failed-to-parse-tls-credentials"
	failedToOpenSQLConnection   = "failed-to-open-sql-connection"
	failedToConnectToStatsD     = "failed-to-connect-to-statsd"
)
