package rabbitmq

import (
	"context"
	"log"

	"github.com/director74/saga_shop/pkg/messaging"
	"github.com/director74/saga_shop/pkg/saga"
	"github.com/director74/saga_shop/pkg/sagahandler"
)

const emailQueue = "notification_email_send_queue"

// EmailDispatcher отправляет письма клиентам
type EmailDispatcher interface {
	SendEmail(ctx context.Context, msg saga.SendEmailMessage) error
}

// EmailConsumer обработчик команд email.send
type EmailConsumer struct {
	sagahandler.BaseSagaConsumer
	dispatcher EmailDispatcher
	ctx        context.Context
}

func NewEmailConsumer(ctx context.Context, bus messaging.Bus, dispatcher EmailDispatcher) *EmailConsumer {
	return &EmailConsumer{
		BaseSagaConsumer: sagahandler.NewBaseSagaConsumer(bus, "notify_customer",
			log.New(log.Writer(), "[NotificationService] [Saga] ", log.LstdFlags)),
		dispatcher: dispatcher,
		ctx:        ctx,
	}
}

// Setup настраивает очередь и привязку для email.send
func (c *EmailConsumer) Setup() error {
	return c.Subscribe(saga.TopicEmailSend, emailQueue, c.handleSendEmail)
}

func (c *EmailConsumer) handleSendEmail(data []byte) error {
	msg, err := sagahandler.Decode[saga.SendEmailMessage](data)
	if err != nil {
		c.Logger.Printf("[ERROR] Некорректное сообщение %s: %v", saga.TopicEmailSend, err)
		return err
	}

	c.Logger.Printf("OrderID=%s: получена команда на письмо %s", msg.OrderID, msg.Type)
	return c.dispatcher.SendEmail(c.ctx, msg)
}
