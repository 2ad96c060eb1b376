package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/director74/saga_shop/payment-service/internal/entity"
)

// PaymentRepo реализация репозитория платежей
type PaymentRepo struct {
	db *gorm.DB
}

// NewPaymentRepository создает новый репозиторий платежей
func NewPaymentRepository(db *gorm.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

// CreatePayment сохраняет решение по заказу. Если решение уже есть, запись не меняется
// и возвращается false.
func (r *PaymentRepo) CreatePayment(ctx context.Context, payment *entity.Payment) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_id"}}, DoNothing: true}).
		Create(payment)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetPaymentByOrderID возвращает платеж по ID заказа, nil если его нет
func (r *PaymentRepo) GetPaymentByOrderID(ctx context.Context, orderID string) (*entity.Payment, error) {
	var payment entity.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}
