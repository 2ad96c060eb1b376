package usecase

import (
	"context"
	"time"

	"github.com/director74/saga_shop/order-service/internal/entity"
)

// SagaStateStore хранилище состояний живых саг
type SagaStateStore interface {
	GetOrCreate(orderID string, now time.Time) (*entity.Saga, bool, error)
	Get(orderID string) (*entity.Saga, bool)
	Remove(orderID string, finishedAt time.Time)
	Discard(orderID string)
	Snapshot() []*entity.Saga
	Len() int
	PruneFinished(before time.Time) int
}

// OrderStatusUpdater фиксирует исход саги в записи заказа
type OrderStatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, id string, status entity.OrderStatus, reason string) error
}

// OrderRepository интерфейс для работы с репозиторием заказов
type OrderRepository interface {
	OrderStatusUpdater
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	MarkShipped(ctx context.Context, id, trackingNumber string) error
}
