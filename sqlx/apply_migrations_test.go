package sqlx_test

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"code.cloudfoundry.org/dbx/logx"
	"code.cloudfoundry.org/dbx/logx/lagerx"
	. "code.cloudfoundry.org/dbx/sqlx"

	"code.cloudfoundry.org/lager/lagertest"
	sqlmock "github.com/DATA-DOG/go-sqlmock"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("#ApplyMigrations", func() {
	var (
		migrationTableName string

		logger logx.Logger

		conn *sql.DB
		mock sqlmock.Sqlmock
		err  error

		db   *DB
		sess *Session

		ctx context.Context

		migrations []Migration

		appliedAt time.Time
	)

	BeforeEach(func() {
		migrationTableName = "db_migrations"

		logger = lagerx.NewLogger(lagertest.NewTestLogger("dbx-sqlx"))

		conn, mock, err = sqlmock.New()
		Expect(err).NotTo(HaveOccurred())

		ctx = context.Background()

		db = NewDB(conn, DBDriverMySQL)
		sess, err = db.Session(ctx)
		Expect(err).NotTo(HaveOccurred())

		appliedAt = time.Now().UTC()

		migrations = []Migration{
			{
				Name: "migration_1",
				Up: func(ctx context.Context, logger logx.Logger, tx *Tx) error {
					_, err := tx.ExecContext(ctx, "SOME FAKE MIGRATION 1")

					return err
				},
			},
			{
				Name: "migration_2",
				Up: func(ctx context.Context, logger logx.Logger, tx *Tx) error {
					_, err := tx.ExecContext(ctx, "SOME FAKE MIGRATION 2")

					return err
				},
			},
		}
	})

	AfterEach(func() {
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	expectCreateTable := func() {
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS `db_migrations`").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
	}

	It("creates the version table and applies every pending migration in a transaction apiece", func() {
		expectCreateTable()
		mock.ExpectQuery("SELECT version, name, applied_at FROM `db_migrations`").
			WillReturnRows(sqlmock.NewRows([]string{"version", "name", "applied_at"}))

		mock.ExpectBegin()
		mock.ExpectExec("SOME FAKE MIGRATION 1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO `db_migrations`").
			WithArgs(0, "migration_1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		mock.ExpectBegin()
		mock.ExpectExec("SOME FAKE MIGRATION 2").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO `db_migrations`").
			WithArgs(1, "migration_2", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		err = ApplyMigrations(ctx, logger, sess, migrationTableName, migrations)

		Expect(err).NotTo(HaveOccurred())
	})

	It("skips migrations already recorded in the version table", func() {
		expectCreateTable()
		mock.ExpectQuery("SELECT version, name, applied_at FROM `db_migrations`").
			WillReturnRows(sqlmock.NewRows([]string{"version", "name", "applied_at"}).
				AddRow(0, "migration_1", appliedAt),
			)

		mock.ExpectBegin()
		mock.ExpectExec("SOME FAKE MIGRATION 2").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO `db_migrations`").
			WithArgs(1, "migration_2", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		err = ApplyMigrations(ctx, logger, sess, migrationTableName, migrations)

		Expect(err).NotTo(HaveOccurred())
	})

	It("does nothing when every migration is already applied", func() {
		expectCreateTable()
		mock.ExpectQuery("SELECT version, name, applied_at FROM `db_migrations`").
			WillReturnRows(sqlmock.NewRows([]string{"version", "name", "applied_at"}).
				AddRow(0, "migration_1", appliedAt).
				AddRow(1, "migration_2", appliedAt),
			)

		err = ApplyMigrations(ctx, logger, sess, migrationTableName, migrations)

		Expect(err).NotTo(HaveOccurred())
	})

	It("still creates the version table when there are no migrations", func() {
		expectCreateTable()

		err = ApplyMigrations(ctx, logger, sess, migrationTableName, []Migration{})

		Expect(err).NotTo(HaveOccurred())
	})

	It("rolls back a failing migration and does not record it", func() {
		expectCreateTable()
		mock.ExpectQuery("SELECT version, name, applied_at FROM `db_migrations`").
			WillReturnRows(sqlmock.NewRows([]string{"version", "name", "applied_at"}))

		mock.ExpectBegin()
		mock.ExpectExec("SOME FAKE MIGRATION 1").
			WillReturnError(errors.New("some sql error"))
		mock.ExpectRollback()

		err = ApplyMigrations(ctx, logger, sess, migrationTableName, migrations)

		Expect(err).To(MatchError("some sql error"))
	})

	It("fails if it cannot create the version table", func() {
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS `db_migrations`").
			WillReturnError(errors.New("some sql error"))
		mock.ExpectRollback()

		err = ApplyMigrations(ctx, logger, sess, migrationTableName, migrations)

		Expect(err).To(MatchError("some sql error"))
	})

	It("fails if it cannot read the version table", func() {
		expectCreateTable()
		mock.ExpectQuery("SELECT version, name, applied_at FROM `db_migrations`").
			WillReturnError(errors.New("some sql error"))

		err = ApplyMigrations(ctx, logger, sess, migrationTableName, migrations)

		Expect(err).To(MatchError("some sql error"))
	})
})
