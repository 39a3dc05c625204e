package testsqlx

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"code.cloudfoundry.org/dbx/sqlx"
)

// FakeDB is an in-memory stand-in for a SQL backend. It understands just
// enough of the statements the migration layer issues (version-table DDL and
// DML, session lock-wait settings) to exercise runner behavior without a
// server. Any other statement is treated as a migration body: it is recorded,
// and an optional hook may fail it to simulate lock contention.
type FakeDB struct {
	tableName string

	mu          sync.Mutex
	markers     []markerRow
	executed    []string
	lockWaits   []string
	connections int
	execHook    func(query string) error
}

type markerRow struct {
	version   int64
	name      string
	appliedAt time.Time
}

func NewFakeDB(tableName string) *FakeDB {
	return &FakeDB{tableName: tableName}
}

// Open returns a DB backed by this fake, posing as a MySQL backend.
func (f *FakeDB) Open() *sqlx.DB {
	return sqlx.NewDB(sql.OpenDB(&fakeConnector{db: f}), sqlx.DBDriverMySQL)
}

// SetExecHook installs a hook invoked for every migration-body statement
// before it is recorded; a returned error fails the statement.
func (f *FakeDB) SetExecHook(hook func(query string) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execHook = hook
}

// ExecutedStatements returns every successfully executed migration-body
// statement, in order, across all connections and attempts.
func (f *FakeDB) ExecutedStatements() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.executed...)
}

// LockWaitStatements returns every session lock-wait statement executed.
func (f *FakeDB) LockWaitStatements() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lockWaits...)
}

// AppliedVersions returns the committed version markers in ascending order.
func (f *FakeDB) AppliedVersions() []int {
	f.mu.Lock()
	defer f.mu.Unlock()

	versions := make([]int, 0, len(f.markers))
	for _, row := range f.markers {
		versions = append(versions, int(row.version))
	}
	sort.Ints(versions)
	return versions
}

// Connections returns how many distinct connections have been opened. A
// discarded session forces the next attempt onto a fresh connection, which
// shows up here.
func (f *FakeDB) Connections() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connections
}

func (f *FakeDB) exec(c *fakeConn, query string, args []driver.NamedValue) (driver.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	quoted := "`" + f.tableName + "`"
	q := strings.TrimSpace(query)
	switch {
	case strings.HasPrefix(q, "SET SESSION"), strings.HasPrefix(q, "SELECT set_config"):
		f.lockWaits = append(f.lockWaits, q)
	case strings.HasPrefix(q, "CREATE TABLE IF NOT EXISTS "+quoted):
		// version table; existence is implicit
	case strings.HasPrefix(q, "INSERT INTO "+quoted):
		row := markerRow{
			version:   args[0].Value.(int64),
			name:      args[1].Value.(string),
			appliedAt: args[2].Value.(time.Time),
		}
		if c.tx != nil {
			c.tx.inserts = append(c.tx.inserts, row)
		} else {
			f.markers = append(f.markers, row)
		}
	case strings.HasPrefix(q, "DELETE FROM "+quoted):
		version := args[0].Value.(int64)
		if c.tx != nil {
			c.tx.deletes = append(c.tx.deletes, version)
		} else {
			f.removeMarker(version)
		}
	default:
		if f.execHook != nil {
			if err := f.execHook(q); err != nil {
				return nil, err
			}
		}
		f.executed = append(f.executed, q)
	}

	return driver.RowsAffected(1), nil
}

func (f *FakeDB) query(query string, _ []driver.NamedValue) (driver.Rows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	q := strings.TrimSpace(query)
	if strings.HasPrefix(q, "SELECT version, name, applied_at FROM") {
		rows := make([]markerRow, len(f.markers))
		copy(rows, f.markers)
		return &markerRows{rows: rows}, nil
	}

	return nil, errors.New("unexpected query: " + q)
}

func (f *FakeDB) commit(tx *fakeTx) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.markers = append(f.markers, tx.inserts...)
	for _, version := range tx.deletes {
		f.removeMarker(version)
	}
}

// callers must hold f.mu
func (f *FakeDB) removeMarker(version int64) {
	kept := f.markers[:0]
	for _, row := range f.markers {
		if row.version != version {
			kept = append(kept, row)
		}
	}
	f.markers = kept
}

type fakeConnector struct {
	db *FakeDB
}

func (c *fakeConnector) Connect(context.Context) (driver.Conn, error) {
	c.db.mu.Lock()
	c.db.connections++
	c.db.mu.Unlock()

	return &fakeConn{db: c.db}, nil
}

func (c *fakeConnector) Driver() driver.Driver {
	return fakeDriver{}
}

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open through the connector")
}

type fakeConn struct {
	db *FakeDB
	tx *fakeTx
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepared statements are not supported")
}

func (c *fakeConn) Close() error {
	return nil
}

func (c *fakeConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *fakeConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	tx := &fakeTx{conn: c}
	c.tx = tx
	return tx, nil
}

func (c *fakeConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	return c.db.exec(c, query, args)
}

func (c *fakeConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	return c.db.query(query, args)
}

type fakeTx struct {
	conn    *fakeConn
	inserts []markerRow
	deletes []int64
}

func (tx *fakeTx) Commit() error {
	tx.conn.db.commit(tx)
	tx.conn.tx = nil
	return nil
}

func (tx *fakeTx) Rollback() error {
	tx.conn.tx = nil
	return nil
}

type markerRows struct {
	rows []markerRow
	i    int
}

func (r *markerRows) Columns() []string {
	return []string{"version", "name", "applied_at"}
}

func (r *markerRows) Close() error {
	return nil
}

func (r *markerRows) Next(dest []driver.Value) error {
	if r.i >= len(r.rows) {
		return io.EOF
	}

	row := r.rows[r.i]
	r.i++

	dest[0] = row.version
	dest[1] = row.name
	dest[2] = row.appliedAt
	return nil
}
