package rabbitmq

import (
	"context"
	"log"

	"github.com/director74/saga_shop/pkg/messaging"
	"github.com/director74/saga_shop/pkg/saga"
	"github.com/director74/saga_shop/pkg/sagahandler"
)

const orderCreatedQueue = "warehouse_order_created_queue"

// InventoryChecker проверяет наличие товаров заказа
type InventoryChecker interface {
	CheckInventory(ctx context.Context, order saga.OrderCreatedMessage) error
}

// SagaConsumer обработчик сообщений саги для склада
type SagaConsumer struct {
	sagahandler.BaseSagaConsumer
	checker InventoryChecker
	ctx     context.Context
}

// NewSagaConsumer создает новый обработчик сообщений саги для склада
func NewSagaConsumer(ctx context.Context, bus messaging.Bus, checker InventoryChecker) *SagaConsumer {
	return &SagaConsumer{
		BaseSagaConsumer: sagahandler.NewBaseSagaConsumer(bus, "check_inventory",
			log.New(log.Writer(), "[WarehouseService] [Saga] ", log.LstdFlags)),
		checker: checker,
		ctx:     ctx,
	}
}

// Setup настраивает обработчик событий саги
func (c *SagaConsumer) Setup() error {
	return c.Subscribe(saga.TopicOrderCreated, orderCreatedQueue, c.handleOrderCreated)
}

func (c *SagaConsumer) handleOrderCreated(data []byte) error {
	order, err := sagahandler.Decode[saga.OrderCreatedMessage](data)
	if err != nil {
		c.Logger.Printf("[ERROR] Некорректное сообщение %s: %v", saga.TopicOrderCreated, err)
		return err
	}

	c.Logger.Printf("OrderID=%s: получен заказ для проверки склада", order.OrderID)
	return c.checker.CheckInventory(c.ctx, order)
}
