package messaging

import (
	"fmt"
	"log"

	"github.com/director74/saga_shop/pkg/config"
	"github.com/director74/saga_shop/pkg/rabbitmq"
)

const topicExchange = "topic"

// MessagePublisher интерфейс для публикации сообщений
type MessagePublisher interface {
	PublishMessage(exchange, routingKey string, message interface{}) error
}

// MessageConsumer интерфейс для получения сообщений
type MessageConsumer interface {
	DeclareQueue(name string) error
	BindQueue(queueName, exchangeName, routingKey string) error
	ConsumeMessages(queueName, consumerName string, handler func([]byte) error) error
}

// MessageBroker объединяет функциональность публикации и обработки сообщений
type MessageBroker interface {
	MessagePublisher
	MessageConsumer
	DeclareExchange(name string, kind string) error
	Close() error
}

// Publisher публикует сообщение в топик. Ошибка возвращается вызывающему, повторов нет.
type Publisher interface {
	Publish(topic string, message interface{}) error
}

// Subscriber подписывает обработчик на топик через именованную очередь.
// Ошибка обработчика приводит к повторной доставке.
type Subscriber interface {
	Subscribe(topic, queue string, handler func([]byte) error) error
}

// Bus шина сообщений саги
type Bus interface {
	Publisher
	Subscriber
	Close() error
}

// RabbitBus реализует Bus поверх одного topic exchange: топик становится ключом маршрутизации,
// у каждого сервиса своя очередь, поэтому одно сообщение получают все подписчики
type RabbitBus struct {
	broker   MessageBroker
	exchange string
	service  string
	logger   *log.Logger
}

// NewRabbitBus объявляет exchange и возвращает шину
func NewRabbitBus(broker MessageBroker, exchange, service string) (*RabbitBus, error) {
	if err := broker.DeclareExchange(exchange, topicExchange); err != nil {
		return nil, fmt.Errorf("ошибка объявления exchange %s: %w", exchange, err)
	}

	return &RabbitBus{
		broker:   broker,
		exchange: exchange,
		service:  service,
		logger:   log.New(log.Writer(), "[Bus] ", log.LstdFlags),
	}, nil
}

// Publish публикует сообщение в топик
func (b *RabbitBus) Publish(topic string, message interface{}) error {
	return PublishWithLogging(b.broker, b.exchange, topic, message)
}

// Subscribe объявляет очередь, привязывает ее к топику и запускает обработку
func (b *RabbitBus) Subscribe(topic, queue string, handler func([]byte) error) error {
	if err := SetupQueues(b.broker, b.exchange, map[string]string{queue: topic}); err != nil {
		return err
	}

	if err := b.broker.ConsumeMessages(queue, b.service, handler); err != nil {
		return fmt.Errorf("ошибка подписки на %s: %w", topic, err)
	}

	b.logger.Printf("Сервис %s подписан на %s через очередь %s", b.service, topic, queue)
	return nil
}

// Close закрывает соединение с брокером
func (b *RabbitBus) Close() error {
	return b.broker.Close()
}

// InitRabbitMQ инициализирует подключение к RabbitMQ с общими параметрами
func InitRabbitMQ(cfg config.RabbitMQConfig) (*rabbitmq.RabbitMQ, error) {
	rmqCfg := rabbitmq.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		VHost:    cfg.VHost,
		Workers:  cfg.Workers,
		Prefetch: cfg.Prefetch,
	}

	rmq, err := rabbitmq.NewRabbitMQ(rmqCfg)
	if err != nil {
		return nil, err
	}

	return rmq, nil
}

// InitBus подключается к RabbitMQ и создает шину для сервиса
func InitBus(cfg config.RabbitMQConfig, service string) (*RabbitBus, error) {
	rmq, err := InitRabbitMQ(cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к RabbitMQ: %w", err)
	}

	bus, err := NewRabbitBus(rmq, cfg.Exchange, service)
	if err != nil {
		rmq.Close()
		return nil, err
	}

	return bus, nil
}

// PublishWithLogging публикует сообщение с логированием успеха/ошибки
func PublishWithLogging(publisher MessagePublisher, exchange, routingKey string, message interface{}) error {
	err := publisher.PublishMessage(exchange, routingKey, message)
	if err != nil {
		log.Printf("Ошибка при публикации сообщения в %s с ключом %s: %v", exchange, routingKey, err)
		return err
	}

	log.Printf("Сообщение успешно опубликовано в %s с ключом %s", exchange, routingKey)
	return nil
}

// SetupQueues объявляет очереди и привязывает каждую к exchange по своему ключу
func SetupQueues(broker MessageConsumer, exchange string, bindings map[string]string) error {
	for queueName, routingKey := range bindings {
		if err := broker.DeclareQueue(queueName); err != nil {
			return fmt.Errorf("ошибка объявления очереди %s: %w", queueName, err)
		}

		if err := broker.BindQueue(queueName, exchange, routingKey); err != nil {
			return fmt.Errorf("ошибка привязки очереди %s к %s: %w", queueName, routingKey, err)
		}
	}

	return nil
}
