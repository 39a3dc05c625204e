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

var _ = Describe("#VerifyAppliedMigrations", func() {
	var (
		migrationTableName string

		logger logx.Logger

		conn *sql.DB
		mock sqlmock.Sqlmock
		err  error

		db *DB

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

		appliedAt = time.Now().UTC()

		migrations = []Migration{
			{Name: "migration_1"},
			{Name: "migration_2"},
			{Name: "migration_3"},
		}
	})

	AfterEach(func() {
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	It("returns true if there are no migrations", func() {
		mock.ExpectQuery("SELECT version, name, applied_at FROM `db_migrations`").
			WillReturnRows(sqlmock.NewRows([]string{"version", "name", "applied_at"}))

		verify, err := VerifyAppliedMigrations(ctx, logger, db, migrationTableName, []Migration{})

		Expect(err).NotTo(HaveOccurred())
		Expect(verify).To(BeTrue())
	})

	It("returns true if all the migrations match", func() {
		mock.ExpectQuery("SELECT version, name, applied_at FROM `db_migrations`").
			WillReturnRows(sqlmock.NewRows([]string{"version", "name", "applied_at"}).
				AddRow(0, "migration_1", appliedAt).
				AddRow(1, "migration_2", appliedAt).
				AddRow(2, "migration_3", appliedAt),
			)

		verify, err := VerifyAppliedMigrations(ctx, logger, db, migrationTableName, migrations)

		Expect(err).NotTo(HaveOccurred())
		Expect(verify).To(BeTrue())
	})

	It("returns false if there is a migration count mismatch", func() {
		mock.ExpectQuery("SELECT version, name, applied_at FROM `db_migrations`").
			WillReturnRows(sqlmock.NewRows([]string{"version", "name", "applied_at"}).
				AddRow(0, "migration_1", appliedAt).
				AddRow(1, "migration_2", appliedAt),
			)

		verify, err := VerifyAppliedMigrations(ctx, logger, db, migrationTableName, migrations)

		Expect(err).NotTo(HaveOccurred())
		Expect(verify).To(BeFalse())
	})

	It("returns false if there is a migration which has not been applied", func() {
		mock.ExpectQuery("SELECT version, name, applied_at FROM `db_migrations`").
			WillReturnRows(sqlmock.NewRows([]string{"version", "name", "applied_at"}).
				AddRow(0, "migration_1", appliedAt).
				AddRow(2, "migration_2", appliedAt).
				AddRow(3, "migration_3", appliedAt),
			)

		verify, err := VerifyAppliedMigrations(ctx, logger, db, migrationTableName, migrations)

		Expect(err).NotTo(HaveOccurred())
		Expect(verify).To(BeFalse())
	})

	It("returns false if the migration names do not match in order of application", func() {
		mock.ExpectQuery("SELECT version, name, applied_at FROM `db_migrations`").
			WillReturnRows(sqlmock.NewRows([]string{"version", "name", "applied_at"}).
				AddRow(0, "migration_2", appliedAt).
				AddRow(1, "migration_1", appliedAt).
				AddRow(2, "migration_3", appliedAt),
			)

		verify, err := VerifyAppliedMigrations(ctx, logger, db, migrationTableName, migrations)

		Expect(err).NotTo(HaveOccurred())
		Expect(verify).To(BeFalse())
	})

	It("fails if it cannot retrieve the applied migrations", func() {
		mock.ExpectQuery("SELECT version, name, applied_at FROM `db_migrations`").
			WillReturnError(errors.New("some sql error"))

		_, err := VerifyAppliedMigrations(ctx, logger, db, migrationTableName, migrations)

		Expect(err).To(MatchError("some sql error"))
	})
})
