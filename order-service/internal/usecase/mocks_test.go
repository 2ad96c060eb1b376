package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/director74/saga_shop/order-service/internal/entity"
	"github.com/director74/saga_shop/pkg/saga"
)

// MockPublisher мок шины с историей публикаций
type MockPublisher struct {
	mock.Mock
	mu             sync.Mutex
	PublishHistory []PublishData
}

type PublishData struct {
	Topic   string
	Message interface{}
}

func (m *MockPublisher) Publish(topic string, message interface{}) error {
	args := m.Called(topic, message)
	if err := args.Error(0); err != nil {
		return err
	}

	m.mu.Lock()
	m.PublishHistory = append(m.PublishHistory, PublishData{Topic: topic, Message: message})
	m.mu.Unlock()
	return nil
}

// Published возвращает успешно опубликованные сообщения в топик
func (m *MockPublisher) Published(topic string) []interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []interface{}
	for _, p := range m.PublishHistory {
		if p.Topic == topic {
			result = append(result, p.Message)
		}
	}
	return result
}

func (m *MockPublisher) Emails() []saga.SendEmailMessage {
	var result []saga.SendEmailMessage
	for _, msg := range m.Published(saga.TopicEmailSend) {
		result = append(result, msg.(saga.SendEmailMessage))
	}
	return result
}

func (m *MockPublisher) Shipments() []saga.ScheduleShippingMessage {
	var result []saga.ScheduleShippingMessage
	for _, msg := range m.Published(saga.TopicShippingSchedule) {
		result = append(result, msg.(saga.ScheduleShippingMessage))
	}
	return result
}

// MockOrderRepository мок репозитория заказов
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateOrderStatus(ctx context.Context, id string, status entity.OrderStatus, reason string) error {
	args := m.Called(ctx, id, status, reason)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkShipped(ctx context.Context, id, trackingNumber string) error {
	args := m.Called(ctx, id, trackingNumber)
	return args.Error(0)
}

// fakeClock управляемые часы для проверки таймаутов
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
