package rabbitmq

import (
	"context"
	"log"

	"github.com/director74/saga_shop/pkg/messaging"
	"github.com/director74/saga_shop/pkg/saga"
	"github.com/director74/saga_shop/pkg/sagahandler"
)

const shippingScheduleQueue = "delivery_shipping_schedule_queue"

// ShippingProcessor отгружает одобренные заказы
type ShippingProcessor interface {
	ProcessShipping(ctx context.Context, msg saga.ScheduleShippingMessage) error
}

// SagaConsumer обработчик сообщений саги для доставки
type SagaConsumer struct {
	sagahandler.BaseSagaConsumer
	processor ShippingProcessor
	ctx       context.Context
}

// NewSagaConsumer создает новый обработчик сообщений саги для доставки
func NewSagaConsumer(ctx context.Context, bus messaging.Bus, processor ShippingProcessor) *SagaConsumer {
	return &SagaConsumer{
		BaseSagaConsumer: sagahandler.NewBaseSagaConsumer(bus, "schedule_shipping",
			log.New(log.Writer(), "[DeliveryService] [Saga] ", log.LstdFlags)),
		processor: processor,
		ctx:       ctx,
	}
}

// Setup настраивает обработчик событий саги
func (c *SagaConsumer) Setup() error {
	return c.Subscribe(saga.TopicShippingSchedule, shippingScheduleQueue, c.handleShippingSchedule)
}

func (c *SagaConsumer) handleShippingSchedule(data []byte) error {
	msg, err := sagahandler.Decode[saga.ScheduleShippingMessage](data)
	if err != nil {
		c.Logger.Printf("[ERROR] Некорректное сообщение %s: %v", saga.TopicShippingSchedule, err)
		return err
	}

	c.Logger.Printf("OrderID=%s: получена команда на отгрузку", msg.OrderID)
	return c.processor.ProcessShipping(c.ctx, msg)
}
