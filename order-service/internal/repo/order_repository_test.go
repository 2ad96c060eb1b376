package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/director74/saga_shop/order-service/internal/entity"
	"github.com/director74/saga_shop/pkg/saga"
)

func newOrderMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
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

func TestOrderRepository_Create(t *testing.T) {
	db, mock := newOrderMockDB(t)
	r := NewOrderRepository(db)

	order, err := entity.NewOrder("A", "ann@example.com", "Ann",
		[]saga.OrderItem{{ProductID: 1, ProductName: "Ноутбук", Price: 100, Quantity: 1}}, time.Now())
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.Create(context.Background(), order))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_CreateError(t *testing.T) {
	db, mock := newOrderMockDB(t)
	r := NewOrderRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnError(errors.New("duplicate key"))

	err := r.Create(context.Background(), &entity.Order{ID: "A", Status: entity.OrderStatusCreated})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID(t *testing.T) {
	db, mock := newOrderMockDB(t)
	r := NewOrderRepository(db)

	rows := sqlmock.NewRows([]string{"id", "customer_email", "customer_name", "items", "total_amount", "status"}).
		AddRow("A", "ann@example.com", "Ann", []byte(`[{"product_id":1,"product_name":"Ноутбук","price":100,"quantity":1}]`), 100.0, "confirmed")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE id = $1`)).
		WillReturnRows(rows)

	order, err := r.GetByID(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusConfirmed, order.Status)

	items, err := order.OrderItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Ноутбук", items[0].ProductName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newOrderMockDB(t)
	r := NewOrderRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := r.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderRepository_UpdateOrderStatus(t *testing.T) {
	db, mock := newOrderMockDB(t)
	r := NewOrderRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, r.UpdateOrderStatus(context.Background(), "A", entity.OrderStatusFailed, "Оплата: отказ"))
	assert.ErrorIs(t, r.UpdateOrderStatus(context.Background(), "A", entity.OrderStatusConfirmed, ""), ErrOrderNotUpdated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_MarkShipped(t *testing.T) {
	db, mock := newOrderMockDB(t)
	r := NewOrderRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.MarkShipped(context.Background(), "A", "TRK12345678"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
