package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	apperrors "github.com/director74/saga_shop/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	publishTimeout     = 5 * time.Second
	drainTimeout       = 10 * time.Second
	defaultWorkers     = 1
	defaultPrefetch    = 16
	consumerTagPattern = "%s-%d"
)

// Config содержит настройки подключения к RabbitMQ
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	VHost    string
	Workers  int
	Prefetch int
}

// RabbitMQ представляет клиент для работы с RabbitMQ.
// Канал amqp не рассчитан на конкурентные публикации, поэтому все операции с ним идут под mu.
type RabbitMQ struct {
	config     Config
	mu         sync.Mutex
	connection *amqp.Connection
	channel    *amqp.Channel
	consumers  []string
	workers    sync.WaitGroup
	logger     *log.Logger
}

func NewRabbitMQ(cfg Config) (*RabbitMQ, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = defaultPrefetch
	}

	rmq := &RabbitMQ{
		config: cfg,
		logger: log.New(log.Writer(), "[RabbitMQ] ", log.LstdFlags),
	}

	if err := rmq.connect(); err != nil {
		return nil, err
	}

	return rmq, nil
}

// connect устанавливает соединение с RabbitMQ
func (r *RabbitMQ) connect() error {
	connStr := fmt.Sprintf("amqp://%s:%s@%s:%s/%s",
		r.config.User, r.config.Password, r.config.Host, r.config.Port, r.config.VHost)

	conn, err := amqp.Dial(connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Qos(r.config.Prefetch, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to set qos: %w", err)
	}

	r.connection = conn
	r.channel = ch
	return nil
}

// reconnect пытается восстановить соединение с RabbitMQ. Вызывается под mu.
func (r *RabbitMQ) reconnect() error {
	if r.connection != nil && !r.connection.IsClosed() && r.channel != nil && !r.channel.IsClosed() {
		return nil
	}

	r.logger.Println("Попытка переподключения к RabbitMQ...")
	if r.connection != nil && !r.connection.IsClosed() {
		r.connection.Close()
	}
	return r.connect()
}

// Close останавливает консьюмеров, дожидается обработки полученных сообщений
// и закрывает соединение
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	if r.channel != nil && !r.channel.IsClosed() {
		for _, tag := range r.consumers {
			if err := r.channel.Cancel(tag, false); err != nil {
				r.logger.Printf("[WARN] Не удалось отменить консьюмера %s: %v", tag, err)
			}
		}
	}
	r.consumers = nil
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(drainTimeout):
		r.logger.Printf("[WARN] Обработчики не завершились за %v, закрываем соединение", drainTimeout)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel != nil && !r.channel.IsClosed() {
		if err := r.channel.Close(); err != nil {
			return fmt.Errorf("ошибка при закрытии канала: %w", err)
		}
	}
	if r.connection != nil && !r.connection.IsClosed() {
		if err := r.connection.Close(); err != nil {
			return fmt.Errorf("ошибка при закрытии соединения: %w", err)
		}
	}
	return nil
}

// DeclareExchange объявляет exchange
func (r *RabbitMQ) DeclareExchange(name string, kind string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.reconnect(); err != nil {
		return fmt.Errorf("ошибка переподключения перед объявлением exchange: %w", err)
	}

	return r.channel.ExchangeDeclare(
		name,  // name
		kind,  // type
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
}

// DeclareQueue объявляет очередь
func (r *RabbitMQ) DeclareQueue(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.reconnect(); err != nil {
		return fmt.Errorf("ошибка переподключения перед объявлением очереди: %w", err)
	}

	_, err := r.channel.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	return err
}

// BindQueue привязывает очередь к exchange
func (r *RabbitMQ) BindQueue(queueName, exchangeName, routingKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.reconnect(); err != nil {
		return fmt.Errorf("ошибка переподключения перед привязкой очереди: %w", err)
	}

	return r.channel.QueueBind(
		queueName,    // queue name
		routingKey,   // routing key
		exchangeName, // exchange
		false,        // no-wait
		nil,          // arguments
	)
}

// PublishMessage публикует сообщение в RabbitMQ
func (r *RabbitMQ) PublishMessage(exchange, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.reconnect(); err != nil {
		return fmt.Errorf("ошибка переподключения перед публикацией сообщения: %w", err)
	}

	return r.channel.PublishWithContext(
		ctx,
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// ConsumeMessages начинает обработку сообщений из очереди. Сообщения разбираются
// несколькими воркерами параллельно, количество задается Config.Workers.
func (r *RabbitMQ) ConsumeMessages(queueName, consumerName string, handler func([]byte) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.reconnect(); err != nil {
		return fmt.Errorf("ошибка переподключения перед обработкой сообщений: %w", err)
	}

	tag := fmt.Sprintf(consumerTagPattern, consumerName, time.Now().UnixNano())

	msgs, err := r.channel.Consume(
		queueName, // queue
		tag,       // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("ошибка при начале обработки сообщений: %w", err)
	}
	r.consumers = append(r.consumers, tag)

	for i := 0; i < r.config.Workers; i++ {
		r.workers.Add(1)
		go func() {
			defer r.workers.Done()
			HandleMessages(msgs, handler, r.logger)
		}()
	}

	return nil
}

// Acknowledger подтверждает или возвращает сообщение брокеру
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// HandleMessages читает доставки до закрытия канала
func HandleMessages(msgs <-chan amqp.Delivery, handler func([]byte) error, logger *log.Logger) {
	for msg := range msgs {
		Dispatch(&msg, msg.Body, handler, logger)
	}
}

// Dispatch вызывает обработчик и подтверждает сообщение по результату:
// успех - Ack, битое сообщение - Nack без возврата в очередь, прочие ошибки - Nack с повторной доставкой
func Dispatch(ack Acknowledger, body []byte, handler func([]byte) error, logger *log.Logger) {
	err := safeHandle(body, handler)

	switch {
	case err == nil:
		if ackErr := ack.Ack(false); ackErr != nil {
			logger.Printf("[ERROR] Не удалось подтвердить сообщение: %v", ackErr)
		}
	case errors.Is(err, apperrors.ErrMalformedMessage):
		logger.Printf("[WARN] Сообщение отброшено: %v", err)
		if nackErr := ack.Nack(false, false); nackErr != nil {
			logger.Printf("[ERROR] Не удалось отклонить сообщение: %v", nackErr)
		}
	default:
		logger.Printf("[ERROR] Ошибка обработки сообщения, вернется в очередь: %v", err)
		if nackErr := ack.Nack(false, true); nackErr != nil {
			logger.Printf("[ERROR] Не удалось вернуть сообщение в очередь: %v", nackErr)
		}
	}
}

func safeHandle(body []byte, handler func([]byte) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("паника в обработчике: %v", r)
		}
	}()
	return handler(body)
}
