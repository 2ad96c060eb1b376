package sagahandler

import (
	"encoding/json"
	"fmt"
	"log"

	apperrors "github.com/director74/saga_shop/pkg/errors"
	"github.com/director74/saga_shop/pkg/messaging"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// BaseSagaConsumer базовый обработчик сообщений саги для сервисов-участников
type BaseSagaConsumer struct {
	Bus    messaging.Bus
	Logger *log.Logger
	Step   string // шаг, за который отвечает этот обработчик
}

// NewBaseSagaConsumer создает базовый обработчик с логгером по имени шага
func NewBaseSagaConsumer(bus messaging.Bus, step string, logger *log.Logger) BaseSagaConsumer {
	if logger == nil {
		logger = log.New(log.Writer(), fmt.Sprintf("[%s] ", step), log.LstdFlags)
	}
	return BaseSagaConsumer{
		Bus:    bus,
		Logger: logger,
		Step:   step,
	}
}

// Subscribe подписывает обработчик шага на топик
func (b *BaseSagaConsumer) Subscribe(topic, queue string, handler func([]byte) error) error {
	if err := b.Bus.Subscribe(topic, queue, handler); err != nil {
		return fmt.Errorf("ошибка при настройке обработчика %s для шага %s: %w", topic, b.Step, err)
	}

	b.Logger.Printf("Настроена обработка сообщений %s для шага %s", topic, b.Step)
	return nil
}

// PublishResult публикует результат шага в топик
func (b *BaseSagaConsumer) PublishResult(topic, orderID string, message interface{}) error {
	if err := b.Bus.Publish(topic, message); err != nil {
		b.Logger.Printf("[ERROR] OrderID=%s: ошибка при публикации %s: %v", orderID, topic, err)
		return fmt.Errorf("публикация %s: %w", topic, err)
	}

	b.Logger.Printf("OrderID=%s: шаг %s опубликовал %s", orderID, b.Step, topic)
	return nil
}

// Decode разбирает и валидирует сообщение. Любая ошибка оборачивает ErrMalformedMessage,
// такие сообщения не возвращаются в очередь.
func Decode[T any](data []byte) (T, error) {
	var msg T
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("%w: %v", apperrors.ErrMalformedMessage, err)
	}

	if err := validate.Struct(msg); err != nil {
		return msg, fmt.Errorf("%w: %v", apperrors.ErrMalformedMessage, err)
	}

	return msg, nil
}
