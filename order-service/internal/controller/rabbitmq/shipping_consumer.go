package rabbitmq

import (
	"context"
	"log"

	"github.com/director74/saga_shop/pkg/messaging"
	"github.com/director74/saga_shop/pkg/saga"
	"github.com/director74/saga_shop/pkg/sagahandler"
)

// ShipmentRecorder фиксирует отгрузку заказа
type ShipmentRecorder interface {
	MarkShipped(ctx context.Context, msg saga.ShippingProcessedMessage) error
}

// ShippingConsumer обработчик сообщений от сервиса доставки
type ShippingConsumer struct {
	sagahandler.BaseSagaConsumer
	recorder ShipmentRecorder
	ctx      context.Context
}

func NewShippingConsumer(ctx context.Context, bus messaging.Bus, recorder ShipmentRecorder, logger *log.Logger) *ShippingConsumer {
	if logger == nil {
		logger = log.New(log.Writer(), "[ShippingConsumer] ", log.LstdFlags)
	}
	return &ShippingConsumer{
		BaseSagaConsumer: sagahandler.NewBaseSagaConsumer(bus, "order-shipping", logger),
		recorder:         recorder,
		ctx:              ctx,
	}
}

// HandleShippingProcessed сохраняет трек-номер отгруженного заказа
func (c *ShippingConsumer) HandleShippingProcessed(data []byte) error {
	msg, err := sagahandler.Decode[saga.ShippingProcessedMessage](data)
	if err != nil {
		c.Logger.Printf("[ERROR] Некорректное сообщение %s: %v", saga.TopicShippingProcessed, err)
		return err
	}

	c.Logger.Printf("[INFO] OrderID=%s: получено событие %s", msg.OrderID, saga.TopicShippingProcessed)
	return c.recorder.MarkShipped(c.ctx, msg)
}

func (c *ShippingConsumer) Setup() error {
	return c.Subscribe(saga.TopicShippingProcessed, shippingProcessedQueue, c.HandleShippingProcessed)
}
