package rabbitmq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/director74/saga_shop/pkg/errors"
	"github.com/director74/saga_shop/pkg/saga"
)

type MockBus struct {
	mock.Mock
	handler func([]byte) error
}

func (m *MockBus) Publish(topic string, message interface{}) error {
	return m.Called(topic, message).Error(0)
}

func (m *MockBus) Subscribe(topic, queue string, handler func([]byte) error) error {
	m.handler = handler
	return m.Called(topic, queue).Error(0)
}

func (m *MockBus) Close() error {
	return m.Called().Error(0)
}

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) ProcessOrder(ctx context.Context, order saga.OrderCreatedMessage) error {
	return m.Called(ctx, order).Error(0)
}

func TestSagaConsumer_OrderCreated(t *testing.T) {
	bus := new(MockBus)
	bus.On("Subscribe", saga.TopicOrderCreated, orderCreatedQueue).Return(nil)

	processor := new(MockProcessor)
	processor.On("ProcessOrder", mock.Anything, mock.MatchedBy(func(o saga.OrderCreatedMessage) bool {
		return o.OrderID == "A" && o.TotalAmount == 100 && len(o.Items) == 1
	})).Return(nil)

	consumer := NewSagaConsumer(context.Background(), bus, processor)
	require.NoError(t, consumer.Setup())

	body := `{"order_id":"A","customer_email":"ann@example.com","customer_name":"Анна",
		"items":[{"product_id":1,"product_name":"Ноутбук","price":100,"quantity":1}],"total_amount":100}`
	require.NoError(t, bus.handler([]byte(body)))

	processor.AssertExpectations(t)
}

func TestSagaConsumer_RejectsInvalidOrder(t *testing.T) {
	bus := new(MockBus)
	bus.On("Subscribe", mock.Anything, mock.Anything).Return(nil)
	processor := new(MockProcessor)

	consumer := NewSagaConsumer(context.Background(), bus, processor)
	require.NoError(t, consumer.Setup())

	err := bus.handler([]byte(`{"order_id":"A","customer_email":"ann@example.com","customer_name":"Анна","items":[]}`))
	assert.ErrorIs(t, err, apperrors.ErrMalformedMessage)
	processor.AssertNotCalled(t, "ProcessOrder", mock.Anything, mock.Anything)
}
