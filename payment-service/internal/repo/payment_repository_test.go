package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/director74/saga_shop/payment-service/internal/entity"
)

func newPaymentMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, mock
}

func TestPaymentRepo_CreatePayment(t *testing.T) {
	db, mock := newPaymentMockDB(t)
	r := NewPaymentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "payments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	payment := &entity.Payment{OrderID: "A", Amount: 100, Status: entity.PaymentStatusCompleted}
	created, err := r.CreatePayment(context.Background(), payment)
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, uint(1), payment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_CreatePaymentConflict(t *testing.T) {
	db, mock := newPaymentMockDB(t)
	r := NewPaymentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT ("order_id") DO NOTHING`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	created, err := r.CreatePayment(context.Background(), &entity.Payment{OrderID: "A", Status: entity.PaymentStatusFailed})
	require.NoError(t, err)

	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_CreatePaymentError(t *testing.T) {
	db, mock := newPaymentMockDB(t)
	r := NewPaymentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "payments"`)).
		WillReturnError(errors.New("connection reset"))

	_, err := r.CreatePayment(context.Background(), &entity.Payment{OrderID: "A"})
	assert.Error(t, err)
}

func TestPaymentRepo_GetPaymentByOrderID(t *testing.T) {
	db, mock := newPaymentMockDB(t)
	r := NewPaymentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "order_id", "amount", "status", "failure_reason"}).
		AddRow(1, "A", 100.0, "failed", "Платеж отклонен банком")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments" WHERE order_id = $1`)).
		WillReturnRows(rows)

	payment, err := r.GetPaymentByOrderID(context.Background(), "A")
	require.NoError(t, err)
	require.NotNil(t, payment)

	assert.False(t, payment.Approved())
	assert.Equal(t, "Платеж отклонен банком", payment.FailureReason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_GetPaymentByOrderIDNotFound(t *testing.T) {
	db, mock := newPaymentMockDB(t)
	r := NewPaymentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	payment, err := r.GetPaymentByOrderID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, payment)
}
