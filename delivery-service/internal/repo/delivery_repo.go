package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/director74/saga_shop/delivery-service/internal/entity"
)

// DeliveryRepo репозиторий для работы с доставкой
type DeliveryRepo struct {
	db *gorm.DB
}

// NewDeliveryRepo создает новый репозиторий доставки
func NewDeliveryRepo(db *gorm.DB) *DeliveryRepo {
	return &DeliveryRepo{
		db: db,
	}
}

// GetDeliveryByOrderID получает информацию о доставке по ID заказа, nil если ее нет
func (r *DeliveryRepo) GetDeliveryByOrderID(ctx context.Context, orderID string) (*entity.Delivery, error) {
	var delivery entity.Delivery
	result := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&delivery)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &delivery, nil
}

// CreateDelivery создает доставку. Для уже запланированного заказа возвращает false.
func (r *DeliveryRepo) CreateDelivery(ctx context.Context, delivery *entity.Delivery) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_id"}}, DoNothing: true}).
		Create(delivery)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateDeliveryStatus обновляет статус доставки заказа
func (r *DeliveryRepo) UpdateDeliveryStatus(ctx context.Context, orderID string, status entity.DeliveryStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Delivery{}).
		Where("order_id = ?", orderID).
		Update("status", status).Error
}
