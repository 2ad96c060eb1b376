package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/director74/saga_shop/order-service/internal/entity"
)

var (
	// ErrOrderNotFound ошибка, когда заказ не найден
	ErrOrderNotFound = errors.New("заказ не найден")
	// ErrOrderNotUpdated заказ не найден или уже перешел в статус, из которого переход запрещен
	ErrOrderNotUpdated = errors.New("заказ не найден или его статус не допускает изменения")
)

// OrderRepository реализация репозитория заказов на GORM
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{
		db: db,
	}
}

func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("ошибка при создании заказа %s: %w", order.ID, err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var order entity.Order
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("ошибка при получении заказа %s: %w", id, result.Error)
	}
	return &order, nil
}

// UpdateOrderStatus фиксирует исход саги. Меняется только заказ в статусе created.
func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id string, status entity.OrderStatus, reason string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where("id = ? AND status = ?", id, entity.OrderStatusCreated).
		Updates(map[string]interface{}{
			"status":         status,
			"failure_reason": reason,
		})
	if result.Error != nil {
		return fmt.Errorf("ошибка при обновлении статуса заказа %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotUpdated
	}
	return nil
}

// MarkShipped сохраняет трек-номер отгруженного заказа
func (r *OrderRepository) MarkShipped(ctx context.Context, id, trackingNumber string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where("id = ? AND status IN ?", id, []entity.OrderStatus{entity.OrderStatusCreated, entity.OrderStatusConfirmed}).
		Updates(map[string]interface{}{
			"status":          entity.OrderStatusShipped,
			"tracking_number": trackingNumber,
		})
	if result.Error != nil {
		return fmt.Errorf("ошибка при отметке отгрузки заказа %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotUpdated
	}
	return nil
}
