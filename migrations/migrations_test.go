package migrations_test

import (
	"context"
	"database/sql"

	"code.cloudfoundry.org/dbx/logx"
	"code.cloudfoundry.org/dbx/logx/lagerx"
	"code.cloudfoundry.org/dbx/migrations"
	"code.cloudfoundry.org/dbx/sqlx"

	"code.cloudfoundry.org/lager/lagertest"
	sqlmock "github.com/DATA-DOG/go-sqlmock"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Migrations", func() {
	var (
		logger logx.Logger

		conn *sql.DB
		mock sqlmock.Sqlmock
		err  error

		ctx context.Context
	)

	BeforeEach(func() {
		logger = lagerx.NewLogger(lagertest.NewTestLogger("dbx-migrations"))

		conn, mock, err = sqlmock.New()
		Expect(err).NotTo(HaveOccurred())

		ctx = context.Background()
	})

	AfterEach(func() {
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	newTx := func(driver sqlx.DBDriver) *sqlx.Tx {
		sess, err := sqlx.NewDB(conn, driver).Session(ctx)
		Expect(err).NotTo(HaveOccurred())

		mock.ExpectBegin()
		tx, err := sess.BeginTx(ctx, nil)
		Expect(err).NotTo(HaveOccurred())

		return tx
	}

	It("declares the migrations in application order", func() {
		names := make([]string, 0, len(migrations.Migrations))
		for _, m := range migrations.Migrations {
			names = append(names, m.Name)
		}

		Expect(names).To(Equal([]string{
			"create_event_table",
			"widen_event_occurred_at_to_offset_aware",
		}))
	})

	Describe("create_event_table", func() {
		It("creates a naive timestamp column on MySQL", func() {
			tx := newTx(sqlx.DBDriverMySQL)
			mock.ExpectExec("occurred_at DATETIME NOT NULL").
				WillReturnResult(sqlmock.NewResult(0, 0))

			Expect(migrations.Migrations[0].Up(ctx, logger, tx)).To(Succeed())
		})

		It("creates a naive timestamp column on Postgres", func() {
			tx := newTx(sqlx.DBDriverPostgres)
			mock.ExpectExec("occurred_at TIMESTAMP WITHOUT TIME ZONE NOT NULL").
				WillReturnResult(sqlmock.NewResult(0, 0))

			Expect(migrations.Migrations[0].Up(ctx, logger, tx)).To(Succeed())
		})

		It("drops the table on the way down", func() {
			tx := newTx(sqlx.DBDriverMySQL)
			mock.ExpectExec("DROP TABLE event").
				WillReturnResult(sqlmock.NewResult(0, 0))

			Expect(migrations.Migrations[0].Down(ctx, logger, tx)).To(Succeed())
		})
	})

	Describe("widen_event_occurred_at_to_offset_aware", func() {
		It("reinterprets the column as UTC on Postgres", func() {
			tx := newTx(sqlx.DBDriverPostgres)
			mock.ExpectExec("TYPE TIMESTAMP WITH TIME ZONE").
				WillReturnResult(sqlmock.NewResult(0, 0))

			Expect(migrations.Migrations[1].Up(ctx, logger, tx)).To(Succeed())
		})

		It("modifies the column in place on MySQL", func() {
			tx := newTx(sqlx.DBDriverMySQL)
			mock.ExpectExec("MODIFY occurred_at TIMESTAMP NOT NULL").
				WillReturnResult(sqlmock.NewResult(0, 0))

			Expect(migrations.Migrations[1].Up(ctx, logger, tx)).To(Succeed())
		})

		It("narrows the column back on the way down", func() {
			tx := newTx(sqlx.DBDriverMySQL)
			mock.ExpectExec("MODIFY occurred_at DATETIME NOT NULL").
				WillReturnResult(sqlmock.NewResult(0, 0))

			Expect(migrations.Migrations[1].Down(ctx, logger, tx)).To(Succeed())
		})
	})
})
