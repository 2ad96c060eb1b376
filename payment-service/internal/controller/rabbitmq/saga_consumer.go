package rabbitmq

import (
	"context"
	"log"

	"github.com/director74/saga_shop/pkg/messaging"
	"github.com/director74/saga_shop/pkg/saga"
	"github.com/director74/saga_shop/pkg/sagahandler"
)

const orderCreatedQueue = "payment_order_created_queue"

// OrderPaymentProcessor принимает решение по оплате заказа
type OrderPaymentProcessor interface {
	ProcessOrder(ctx context.Context, order saga.OrderCreatedMessage) error
}

// SagaConsumer обработчик сообщений саги для платежей
type SagaConsumer struct {
	sagahandler.BaseSagaConsumer
	processor OrderPaymentProcessor
	ctx       context.Context
}

// NewSagaConsumer создает новый обработчик сообщений саги для платежей
func NewSagaConsumer(ctx context.Context, bus messaging.Bus, processor OrderPaymentProcessor) *SagaConsumer {
	return &SagaConsumer{
		BaseSagaConsumer: sagahandler.NewBaseSagaConsumer(bus, "process_payment",
			log.New(log.Writer(), "[PaymentService] [Saga] ", log.LstdFlags)),
		processor: processor,
		ctx:       ctx,
	}
}

// Setup настраивает обработчик событий саги
func (c *SagaConsumer) Setup() error {
	return c.Subscribe(saga.TopicOrderCreated, orderCreatedQueue, c.handleOrderCreated)
}

// handleOrderCreated обрабатывает новый заказ
func (c *SagaConsumer) handleOrderCreated(data []byte) error {
	order, err := sagahandler.Decode[saga.OrderCreatedMessage](data)
	if err != nil {
		c.Logger.Printf("[ERROR] Некорректное сообщение %s: %v", saga.TopicOrderCreated, err)
		return err
	}

	c.Logger.Printf("OrderID=%s: получен заказ для оплаты", order.OrderID)
	return c.processor.ProcessOrder(c.ctx, order)
}
