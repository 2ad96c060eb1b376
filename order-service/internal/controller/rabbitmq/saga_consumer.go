package rabbitmq

import (
	"context"
	"log"

	"github.com/director74/saga_shop/pkg/messaging"
	"github.com/director74/saga_shop/pkg/saga"
	"github.com/director74/saga_shop/pkg/sagahandler"
)

const (
	paymentProcessedQueue  = "order_payment_processed_queue"
	inventoryCheckedQueue  = "order_inventory_checked_queue"
	shippingProcessedQueue = "order_shipping_processed_queue"
)

// SagaReplyHandler принимает ответы ветвей саги
type SagaReplyHandler interface {
	HandlePaymentProcessed(ctx context.Context, msg saga.PaymentProcessedMessage) error
	HandleInventoryChecked(ctx context.Context, msg saga.InventoryCheckedMessage) error
}

// SagaConsumer обработчик ответов платежного и складского сервисов
type SagaConsumer struct {
	sagahandler.BaseSagaConsumer
	handler SagaReplyHandler
	ctx     context.Context
}

func NewSagaConsumer(ctx context.Context, bus messaging.Bus, handler SagaReplyHandler, logger *log.Logger) *SagaConsumer {
	if logger == nil {
		logger = log.New(log.Writer(), "[SagaConsumer] ", log.LstdFlags)
	}
	return &SagaConsumer{
		BaseSagaConsumer: sagahandler.NewBaseSagaConsumer(bus, "saga-coordinator", logger),
		handler:          handler,
		ctx:              ctx,
	}
}

// HandlePaymentProcessed разбирает ответ платежной ветви
func (c *SagaConsumer) HandlePaymentProcessed(data []byte) error {
	msg, err := sagahandler.Decode[saga.PaymentProcessedMessage](data)
	if err != nil {
		c.Logger.Printf("[ERROR] Некорректное сообщение %s: %v", saga.TopicPaymentProcessed, err)
		return err
	}

	c.Logger.Printf("OrderID=%s: получен %s, approved=%t", msg.OrderID, saga.TopicPaymentProcessed, msg.Approved)
	return c.handler.HandlePaymentProcessed(c.ctx, msg)
}

// HandleInventoryChecked разбирает ответ складской ветви
func (c *SagaConsumer) HandleInventoryChecked(data []byte) error {
	msg, err := sagahandler.Decode[saga.InventoryCheckedMessage](data)
	if err != nil {
		c.Logger.Printf("[ERROR] Некорректное сообщение %s: %v", saga.TopicInventoryChecked, err)
		return err
	}

	c.Logger.Printf("OrderID=%s: получен %s, available=%t", msg.OrderID, saga.TopicInventoryChecked, msg.Available)
	return c.handler.HandleInventoryChecked(c.ctx, msg)
}

// Setup подписывает обработчики на ответы ветвей
func (c *SagaConsumer) Setup() error {
	if err := c.Subscribe(saga.TopicPaymentProcessed, paymentProcessedQueue, c.HandlePaymentProcessed); err != nil {
		return err
	}
	return c.Subscribe(saga.TopicInventoryChecked, inventoryCheckedQueue, c.HandleInventoryChecked)
}
