package sagahandler

import (
	"errors"
	"io"
	"log"
	"testing"

	apperrors "github.com/director74/saga_shop/pkg/errors"
	"github.com/director74/saga_shop/pkg/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBus struct {
	mock.Mock
}

func (m *MockBus) Publish(topic string, message interface{}) error {
	return m.Called(topic, message).Error(0)
}

func (m *MockBus) Subscribe(topic, queue string, handler func([]byte) error) error {
	return m.Called(topic, queue).Error(0)
}

func (m *MockBus) Close() error {
	return m.Called().Error(0)
}

func TestDecode_Valid(t *testing.T) {
	msg, err := Decode[saga.PaymentProcessedMessage]([]byte(`{"order_id":"A","approved":true,"amount":10}`))

	require.NoError(t, err)
	assert.Equal(t, "A", msg.OrderID)
	assert.True(t, msg.Approved)
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := Decode[saga.PaymentProcessedMessage]([]byte(`{"order_id":`))

	assert.ErrorIs(t, err, apperrors.ErrMalformedMessage)
}

func TestDecode_MissingOrderID(t *testing.T) {
	_, err := Decode[saga.InventoryCheckedMessage]([]byte(`{"available":true}`))

	assert.ErrorIs(t, err, apperrors.ErrMalformedMessage)
}

func TestDecode_EmailValidation(t *testing.T) {
	_, err := Decode[saga.SendEmailMessage]([]byte(`{"to":"not-an-email","subject":"s","body":"b","order_id":"A","type":"confirmed"}`))
	assert.ErrorIs(t, err, apperrors.ErrMalformedMessage)

	_, err = Decode[saga.SendEmailMessage]([]byte(`{"to":"a@b.com","subject":"s","body":"b","order_id":"A","type":"spam"}`))
	assert.ErrorIs(t, err, apperrors.ErrMalformedMessage)
}

func TestDecode_OrderCreatedRequiresItems(t *testing.T) {
	_, err := Decode[saga.OrderCreatedMessage]([]byte(`{"order_id":"A","customer_email":"a@b.com","customer_name":"Ann","items":[]}`))

	assert.ErrorIs(t, err, apperrors.ErrMalformedMessage)
}

func TestPublishResult(t *testing.T) {
	bus := new(MockBus)
	bus.On("Publish", saga.TopicPaymentProcessed, mock.Anything).Return(nil).Once()
	bus.On("Publish", saga.TopicInventoryChecked, mock.Anything).Return(errors.New("closed")).Once()

	b := NewBaseSagaConsumer(bus, "payment", log.New(io.Discard, "", 0))

	assert.NoError(t, b.PublishResult(saga.TopicPaymentProcessed, "A", saga.PaymentProcessedMessage{OrderID: "A"}))
	assert.Error(t, b.PublishResult(saga.TopicInventoryChecked, "A", saga.InventoryCheckedMessage{OrderID: "A"}))
	bus.AssertExpectations(t)
}

func TestSubscribe(t *testing.T) {
	bus := new(MockBus)
	bus.On("Subscribe", saga.TopicOrderCreated, "payment_order_queue").Return(nil)

	b := NewBaseSagaConsumer(bus, "payment", log.New(io.Discard, "", 0))

	require.NoError(t, b.Subscribe(saga.TopicOrderCreated, "payment_order_queue", func([]byte) error { return nil }))
	bus.AssertExpectations(t)
}
