package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/director74/saga_shop/pkg/messaging"
	"github.com/director74/saga_shop/pkg/saga"
	"github.com/director74/saga_shop/warehouse-service/internal/entity"
)

// StockRepository хранилище остатков и резервов
type StockRepository interface {
	Reserve(orderID string, items []saga.OrderItem, now time.Time) (*entity.Reservation, bool)
	GetReservation(orderID string) (*entity.Reservation, bool)
	Stock() []entity.StockLevel
}

// WarehouseUseCase проверяет наличие товаров для заказа
type WarehouseUseCase struct {
	repo       StockRepository
	publisher  messaging.Publisher
	checkDelay time.Duration
	logger     *log.Logger
	now        func() time.Time
}

// NewWarehouseUseCase создает новый usecase склада
func NewWarehouseUseCase(repo StockRepository, publisher messaging.Publisher, checkDelay time.Duration) *WarehouseUseCase {
	return &WarehouseUseCase{
		repo:       repo,
		publisher:  publisher,
		checkDelay: checkDelay,
		logger:     log.New(log.Writer(), "[WarehouseService] ", log.LstdFlags),
		now:        time.Now,
	}
}

// CheckInventory резервирует позиции заказа и публикует inventory.checked.
// Повторная доставка заказа публикует прежний результат без повторного списания.
func (uc *WarehouseUseCase) CheckInventory(ctx context.Context, order saga.OrderCreatedMessage) error {
	reservation, ok := uc.repo.GetReservation(order.OrderID)
	if !ok {
		uc.logger.Printf("OrderID=%s: проверка наличия %d позиций", order.OrderID, len(order.Items))

		if err := uc.wait(ctx); err != nil {
			return err
		}

		var created bool
		reservation, created = uc.repo.Reserve(order.OrderID, order.Items, uc.now().UTC())
		if !created {
			uc.logger.Printf("OrderID=%s: резерв уже создан параллельной доставкой", order.OrderID)
		}
	} else {
		uc.logger.Printf("OrderID=%s: заказ уже проверен, публикуем прежний результат", order.OrderID)
	}

	if err := uc.publisher.Publish(saga.TopicInventoryChecked, reservation.Message()); err != nil {
		return fmt.Errorf("ошибка публикации результата проверки склада для заказа %s: %w", order.OrderID, err)
	}

	if reservation.Reserved {
		uc.logger.Printf("OrderID=%s: товары зарезервированы", order.OrderID)
	} else {
		uc.logger.Printf("[WARN] OrderID=%s: товары недоступны: %s", order.OrderID, reservation.FailureReason)
	}
	return nil
}

// Stock возвращает текущие остатки
func (uc *WarehouseUseCase) Stock() []entity.StockLevel {
	return uc.repo.Stock()
}

func (uc *WarehouseUseCase) wait(ctx context.Context) error {
	if uc.checkDelay <= 0 {
		return nil
	}

	timer := time.NewTimer(uc.checkDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
