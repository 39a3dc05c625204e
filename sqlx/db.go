package sqlx

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"fmt"
	"net"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	uuid "github.com/satori/go.uuid"
)

type DBDriver string
type DBFlavor string

const (
	DBDriverMySQL    DBDriver = "mysql"
	DBDriverPostgres DBDriver = "postgres"

	DBFlavorMySQL    DBFlavor = "mysql"
	DBFlavorMariaDB  DBFlavor = "mariadb"
	DBFlavorPostgres DBFlavor = "postgres"
)

type DBOption interface {
	config(*dbConfig)
}

func DBUsername(username string) DBOption {
	return &dbUsernameOption{username: username}
}

func DBPassword(password string) DBOption {
	return &dbPasswordOption{password: password}
}

func DBDatabaseName(dbName string) DBOption {
	return &dbDatabaseNameOption{dbName: dbName}
}

func DBHost(host string) DBOption {
	return &dbHostOption{host: host}
}

func DBPort(port int) DBOption {
	return &dbPortOption{port: port}
}

func DBConnectionMaxLifetime(max time.Duration) DBOption {
	return &dbConnectionMaxLifetime{max: max}
}

func DBRootCAPool(rootCAPool *x509.CertPool) DBOption {
	return &dbTLSConfigOption{
		tlsConfig: &tls.Config{
			RootCAs:    rootCAPool,
			MinVersion: tls.VersionTLS12,
		},
	}
}

type DB struct {
	Conn *sql.DB

	driver  DBDriver
	flavor  DBFlavor
	version string
}

// NewDB wraps an already-open connection pool. Used by test harnesses; the
// usual entry point is Connect.
func NewDB(conn *sql.DB, driver DBDriver) *DB {
	return &DB{
		Conn:   conn,
		driver: driver,
	}
}

// Connect opens a connection pool whose sessions are pinned to UTC. Every
// timestamp this module reads or writes assumes the database session clock is
// UTC; the pinning here is what makes that assumption hold.
func Connect(driver DBDriver, options ...DBOption) (*DB, error) {
	cfg := &dbConfig{}

	for _, opt := range options {
		opt.config(cfg)
	}

	db, err := open(driver, cfg)
	if err != nil {
		return nil, err
	}

	db.Conn.SetConnMaxLifetime(cfg.connMaxLifetime)

	for attempt := 0; attempt < 10; attempt++ {
		err = db.Ping()
		if err == nil {
			return db, nil
		}
	}

	if err = db.Close(); err != nil {
		return nil, err
	}

	return nil, ErrFailedToEstablishConnection
}

func (db *DB) Driver() DBDriver {
	return db.driver
}

func (db *DB) Flavor() DBFlavor {
	return db.flavor
}

func (db *DB) Version() string {
	return db.version
}

func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.Conn.Exec(query, args...)
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return db.Conn.ExecContext(ctx, query, args...)
}

func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.Conn.Query(query, args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.Conn.QueryContext(ctx, query, args...)
}

func (db *DB) QueryRow(query string, args ...interface{}) squirrel.RowScanner {
	return db.Conn.QueryRow(query, args...)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) squirrel.RowScanner {
	return db.Conn.QueryRowContext(ctx, query, args...)
}

// BeginTx will generate a Database-aware transaction, with all database
// information duplicated from the Database-aware connection
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.Conn.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &Tx{
		tx:      tx,
		driver:  db.driver,
		flavor:  db.flavor,
		version: db.version,
	}, nil
}

func (db *DB) Close() error {
	return db.Conn.Close()
}

func (db *DB) Ping() error {
	return db.Conn.Ping()
}

func (db *DB) placeholderFormat() squirrel.PlaceholderFormat {
	return placeholderFormat(db.driver)
}

func placeholderFormat(driver DBDriver) squirrel.PlaceholderFormat {
	if driver == DBDriverPostgres {
		return squirrel.Dollar
	}
	return squirrel.Question
}

func open(driver DBDriver, cfg *dbConfig) (*DB, error) {
	switch driver {
	case DBDriverMySQL:
		return openMySQL(cfg)
	case DBDriverPostgres:
		return openPostgres(cfg)
	default:
		return nil, ErrUnsupportedSQLDriver
	}
}

func openMySQL(cfg *dbConfig) (*DB, error) {
	var (
		version string
		flavor  DBFlavor
	)

	dataSourceName, err := cfg.dataSourceNameMySQL()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(string(DBDriverMySQL), dataSourceName)
	if err != nil {
		return nil, err
	}

	var (
		unused    string
		dbVersion string
	)

	err = db.QueryRow(`SHOW VARIABLES LIKE 'version'`).Scan(&unused, &dbVersion)
	// MySQL will error if the system table 'performance_schema.session_variables' doesn't exist
	if err == nil {
		mariadbVersionRegex := regexp.MustCompile("(.*)-MariaDB")

		matches := mariadbVersionRegex.FindStringSubmatch(dbVersion)
		if matches == nil {
			// Not MariaDB
			flavor = DBFlavorMySQL
			version = dbVersion
		} else {
			flavor = DBFlavorMariaDB
			version = matches[1]
		}
	} else {
		flavor = DBFlavorMySQL
	}

	return &DB{
		Conn:    db,
		driver:  DBDriverMySQL,
		flavor:  flavor,
		version: version,
	}, nil
}

func openPostgres(cfg *dbConfig) (*DB, error) {
	dataSourceName, err := cfg.dataSourceNamePostgres()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(string(DBDriverPostgres), dataSourceName)
	if err != nil {
		return nil, err
	}

	var version string
	_ = db.QueryRow(`SHOW server_version`).Scan(&version)

	return &DB{
		Conn:    db,
		driver:  DBDriverPostgres,
		flavor:  DBFlavorPostgres,
		version: version,
	}, nil
}

type dbConfig struct {
	username string
	password string
	dbName   string
	host     string
	port     int

	tlsConfig *tls.Config

	connMaxLifetime time.Duration
}

func (c *dbConfig) dataSourceNameMySQL() (string, error) {
	cfg := mysql.NewConfig()
	cfg.User = c.username
	cfg.Passwd = c.password
	cfg.DBName = c.dbName
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.host, strconv.Itoa(c.port))
	cfg.ParseTime = true

	// Timestamps travel as UTC wall-clock values in both directions.
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{
		"time_zone": "'+00:00'",
	}

	if c.tlsConfig != nil {
		tlsConfigName := uuid.NewV4().String()
		if err := mysql.RegisterTLSConfig(tlsConfigName, c.tlsConfig); err != nil {
			return "", err
		}

		cfg.TLSConfig = tlsConfigName
	}

	return cfg.FormatDSN(), nil
}

func (c *dbConfig) dataSourceNamePostgres() (string, error) {
	if c.tlsConfig != nil {
		return "", ErrUnsupportedTLSConfig
	}

	params := map[string]string{
		"host":     c.host,
		"user":     c.username,
		"password": c.password,
		"dbname":   c.dbName,
		"sslmode":  "disable",
		// Run-time parameter passed through to the server on connect.
		"timezone": "UTC",
	}
	if c.port != 0 {
		params["port"] = strconv.Itoa(c.port)
	}

	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []string
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, quotePostgresValue(params[k])))
	}

	return strings.Join(pairs, " "), nil
}

func quotePostgresValue(value string) string {
	if value != "" && !strings.ContainsAny(value, " '\\") {
		return value
	}

	value = strings.Replace(value, `\`, `\\`, -1)
	value = strings.Replace(value, `'`, `\'`, -1)
	return "'" + value + "'"
}

type dbUsernameOption struct {
	username string
}

func (o *dbUsernameOption) config(c *dbConfig) {
	c.username = o.username
}

type dbPasswordOption struct {
	password string
}

func (o *dbPasswordOption) config(c *dbConfig) {
	c.password = o.password
}

type dbDatabaseNameOption struct {
	dbName string
}

func (o *dbDatabaseNameOption) config(c *dbConfig) {
	c.dbName = o.dbName
}

type dbHostOption struct {
	host string
}

func (o *dbHostOption) config(c *dbConfig) {
	c.host = o.host
}

type dbPortOption struct {
	port int
}

func (o *dbPortOption) config(c *dbConfig) {
	c.port = o.port
}

type dbConnectionMaxLifetime struct {
	max time.Duration
}

func (o *dbConnectionMaxLifetime) config(c *dbConfig) {
	c.connMaxLifetime = o.max
}

type dbTLSConfigOption struct {
	tlsConfig *tls.Config
}

func (o *dbTLSConfigOption) config(c *dbConfig) {
	c.tlsConfig = o.tlsConfig
}
