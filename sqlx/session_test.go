package sqlx_test

import (
	"context"
	"database/sql"
	"time"

	. "code.cloudfoundry.org/dbx/sqlx"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Session", func() {
	var (
		conn *sql.DB
		mock sqlmock.Sqlmock
		err  error

		ctx context.Context
	)

	BeforeEach(func() {
		conn, mock, err = sqlmock.New()
		Expect(err).NotTo(HaveOccurred())

		ctx = context.Background()
	})

	AfterEach(func() {
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	Describe("#SetLockWait", func() {
		Context("when the driver is MySQL", func() {
			var sess *Session

			BeforeEach(func() {
				sess, err = NewDB(conn, DBDriverMySQL).Session(ctx)
				Expect(err).NotTo(HaveOccurred())
			})

			It("sets both session lock-wait variables in whole seconds", func() {
				mock.ExpectExec("SET SESSION innodb_lock_wait_timeout = 2, lock_wait_timeout = 2").
					WillReturnResult(sqlmock.NewResult(0, 0))

				Expect(sess.SetLockWait(ctx, 2*time.Second)).To(Succeed())
			})

			It("rounds a fractional ceiling up", func() {
				mock.ExpectExec("SET SESSION innodb_lock_wait_timeout = 3, lock_wait_timeout = 3").
					WillReturnResult(sqlmock.NewResult(0, 0))

				Expect(sess.SetLockWait(ctx, 2500*time.Millisecond)).To(Succeed())
			})

			It("never sets the variables below one second", func() {
				mock.ExpectExec("SET SESSION innodb_lock_wait_timeout = 1, lock_wait_timeout = 1").
					WillReturnResult(sqlmock.NewResult(0, 0))

				Expect(sess.SetLockWait(ctx, 100*time.Millisecond)).To(Succeed())
			})

			It("leaves the engine default in place for a zero duration", func() {
				Expect(sess.SetLockWait(ctx, 0)).To(Succeed())
			})
		})

		Context("when the driver is Postgres", func() {
			var sess *Session

			BeforeEach(func() {
				sess, err = NewDB(conn, DBDriverPostgres).Session(ctx)
				Expect(err).NotTo(HaveOccurred())
			})

			It("sets lock_timeout in milliseconds via set_config", func() {
				mock.ExpectExec("SELECT set_config").
					WithArgs("1500ms").
					WillReturnResult(sqlmock.NewResult(0, 0))

				Expect(sess.SetLockWait(ctx, 1500*time.Millisecond)).To(Succeed())
			})

			It("leaves the engine default in place for a zero duration", func() {
				Expect(sess.SetLockWait(ctx, 0)).To(Succeed())
			})
		})
	})
})
