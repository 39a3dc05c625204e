package flags

import (
	"context"
	"crypto/x509"
	"os"
	"time"

	"code.cloudfoundry.org/dbx/logx"
	"code.cloudfoundry.org/dbx/sqlx"
)

const postgresBootstrapDatabase = "postgres"

type DBFlag struct {
	Driver   sqlx.DBDriver `long:"driver" description:"Database driver to use for SQL backend (e.g. mysql, postgres)" required:"true"`
	Host     string        `long:"host" description:"Host for SQL backend"`
	Port     int           `long:"port" description:"Port for SQL backend"`
	Schema   string        `long:"schema" description:"Database name to use for connecting to SQL backend"`
	Username string        `long:"username" description:"Username to use for connecting to SQL backend"`
	Password string        `long:"password" description:"Password to use for connecting to SQL backend"`

	TLS    SQLTLSFlag    `group:"TLS" namespace:"tls"`
	Tuning SQLTuningFlag `group:"Tuning" namespace:"tuning"`
}

type SQLTLSFlag struct {
	RootCAs []string `long:"root-ca" description:"Path(s) of CA certificate(s) for TLS connection to the SQL backend"`
}

type SQLTuningFlag struct {
	ConnMaxLifetime int `long:"connection-max-lifetime" description:"Limit the lifetime in milliseconds of a SQL connection"`
}

// Connect opens a pool against the configured database.
func (o *DBFlag) Connect(ctx context.Context, logger logx.Logger) (*sqlx.DB, error) {
	return o.connect(ctx, logger, o.Schema)
}

// ConnectBootstrap opens a pool against the engine's administrative database
// rather than the configured one, for creating or dropping the latter.
func (o *DBFlag) ConnectBootstrap(ctx context.Context, logger logx.Logger) (*sqlx.DB, error) {
	bootstrapDB := ""
	if o.Driver == sqlx.DBDriverPostgres {
		bootstrapDB = postgresBootstrapDatabase
	}
	return o.connect(ctx, logger, bootstrapDB)
}

func (o *DBFlag) connect(ctx context.Context, logger logx.Logger, schema string) (*sqlx.DB, error) {
	logger = logger.WithData(logx.Data{
		Key:   "db_driver",
		Value: o.Driver,
	}, logx.Data{
		Key:   "db_host",
		Value: o.Host,
	}, logx.Data{
		Key:   "db_port",
		Value: o.Port,
	}, logx.Data{
		Key:   "db_schema",
		Value: schema,
	}, logx.Data{
		Key:   "db_username",
		Value: o.Username,
	})

	dbOpts := []sqlx.DBOption{
		sqlx.DBUsername(o.Username),
		sqlx.DBPassword(o.Password),
		sqlx.DBDatabaseName(schema),
		sqlx.DBHost(o.Host),
		sqlx.DBPort(o.Port),
		sqlx.DBConnectionMaxLifetime(time.Duration(o.Tuning.ConnMaxLifetime) * time.Millisecond),
	}

	if len(o.TLS.RootCAs) != 0 {
		tlsLogger := logger.WithName("create-sql-root-ca-pool")

		rootCAPool := x509.NewCertPool()
		for _, certPath := range o.TLS.RootCAs {
			b, bErr := os.ReadFile(certPath)
			if bErr != nil {
				tlsLogger.Error(failedToReadCertificate, bErr, logx.Data{Key: "path", Value: certPath})
				return nil, bErr
			}

			if !rootCAPool.AppendCertsFromPEM(b) {
				tlsLogger.Error(failedToParseTLSCredentials, ErrInvalidCertificate, logx.Data{Key: "path", Value: certPath})
				return nil, ErrInvalidCertificate
			}
		}

		dbOpts = append(dbOpts, sqlx.DBRootCAPool(rootCAPool))
	}

	conn, err := sqlx.Connect(o.Driver, dbOpts...)
	if err != nil {
		logger.Error(failedToOpenSQLConnection, err)
		return nil, err
	}

	return conn, nil
}
