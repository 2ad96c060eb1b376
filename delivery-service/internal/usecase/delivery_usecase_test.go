package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/director74/saga_shop/delivery-service/internal/entity"
	"github.com/director74/saga_shop/pkg/saga"
)

type MockDeliveryRepository struct {
	mock.Mock
}

func (m *MockDeliveryRepository) GetDeliveryByOrderID(ctx context.Context, orderID string) (*entity.Delivery, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) CreateDelivery(ctx context.Context, delivery *entity.Delivery) (bool, error) {
	args := m.Called(ctx, delivery)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeliveryRepository) UpdateDeliveryStatus(ctx context.Context, orderID string, status entity.DeliveryStatus) error {
	return m.Called(ctx, orderID, status).Error(0)
}

type MockPublisher struct {
	mock.Mock
	mu        sync.Mutex
	published map[string][]interface{}
}

func (m *MockPublisher) Publish(topic string, message interface{}) error {
	err := m.Called(topic, message).Error(0)
	if err == nil {
		m.mu.Lock()
		if m.published == nil {
			m.published = make(map[string][]interface{})
		}
		m.published[topic] = append(m.published[topic], message)
		m.mu.Unlock()
	}
	return err
}

func (m *MockPublisher) Published(topic string) []interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]interface{}(nil), m.published[topic]...)
}

var shippedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestUseCase(repo DeliveryRepository, publisher *MockPublisher) *DeliveryUseCase {
	uc := NewDeliveryUseCase(repo, publisher, 0)
	uc.logger = log.New(io.Discard, "", 0)
	uc.now = func() time.Time { return shippedAt }
	uc.trackingCode = func() string { return "TRK12345678" }
	return uc
}

func scheduleMessage() saga.ScheduleShippingMessage {
	return saga.ScheduleShippingMessage{
		OrderID:       "A",
		CustomerName:  "Анна",
		CustomerEmail: "ann@example.com",
		Items:         []saga.OrderItem{{ProductID: 1, ProductName: "Ноутбук", Price: 100, Quantity: 1}},
	}
}

func TestProcessShipping_Success(t *testing.T) {
	repo := new(MockDeliveryRepository)
	publisher := new(MockPublisher)

	repo.On("GetDeliveryByOrderID", mock.Anything, "A").Return(nil, nil)
	repo.On("CreateDelivery", mock.Anything, mock.MatchedBy(func(d *entity.Delivery) bool {
		return d.OrderID == "A" && d.TrackingCode == "TRK12345678" && d.Status == entity.DeliveryStatusScheduled
	})).Return(true, nil)
	repo.On("UpdateDeliveryStatus", mock.Anything, "A", entity.DeliveryStatusShipped).Return(nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, newTestUseCase(repo, publisher).ProcessShipping(context.Background(), scheduleMessage()))

	processed := publisher.Published(saga.TopicShippingProcessed)
	require.Len(t, processed, 1)
	msg := processed[0].(saga.ShippingProcessedMessage)
	assert.Equal(t, "TRK12345678", msg.TrackingNumber)
	assert.Equal(t, shippedAt, msg.ShippedAt)

	emails := publisher.Published(saga.TopicEmailSend)
	require.Len(t, emails, 1)
	email := emails[0].(saga.SendEmailMessage)
	assert.Equal(t, saga.EmailTypeShipped, email.Type)
	assert.Equal(t, "ann@example.com", email.To)
	assert.Contains(t, email.Body, "Здравствуйте, Анна!")
	assert.Contains(t, email.Body, "TRK12345678")
	assert.Contains(t, email.Body, "01.03.2024 10:00")

	repo.AssertExpectations(t)
}

func TestProcessShipping_AlreadyShipped(t *testing.T) {
	repo := new(MockDeliveryRepository)
	publisher := new(MockPublisher)

	repo.On("GetDeliveryByOrderID", mock.Anything, "A").
		Return(&entity.Delivery{OrderID: "A", Status: entity.DeliveryStatusShipped, TrackingCode: "TRK00000001"}, nil)

	require.NoError(t, newTestUseCase(repo, publisher).ProcessShipping(context.Background(), scheduleMessage()))

	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "CreateDelivery", mock.Anything, mock.Anything)
}

func TestProcessShipping_RedeliveryRepublishesSameTracking(t *testing.T) {
	repo := new(MockDeliveryRepository)
	publisher := new(MockPublisher)

	// первая попытка выдала трек, но публикация не удалась
	repo.On("GetDeliveryByOrderID", mock.Anything, "A").Return(&entity.Delivery{
		OrderID:        "A",
		Status:         entity.DeliveryStatusScheduled,
		RecipientEmail: "ann@example.com",
		TrackingCode:   "TRK00000001",
		ShippedAt:      shippedAt,
	}, nil)
	repo.On("UpdateDeliveryStatus", mock.Anything, "A", entity.DeliveryStatusShipped).Return(nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, newTestUseCase(repo, publisher).ProcessShipping(context.Background(), scheduleMessage()))

	processed := publisher.Published(saga.TopicShippingProcessed)
	require.Len(t, processed, 1)
	assert.Equal(t, "TRK00000001", processed[0].(saga.ShippingProcessedMessage).TrackingNumber)
	repo.AssertNotCalled(t, "CreateDelivery", mock.Anything, mock.Anything)
}

func TestProcessShipping_PublishFailure(t *testing.T) {
	repo := new(MockDeliveryRepository)
	publisher := new(MockPublisher)

	repo.On("GetDeliveryByOrderID", mock.Anything, "A").Return(nil, nil)
	repo.On("CreateDelivery", mock.Anything, mock.Anything).Return(true, nil)
	publisher.On("Publish", saga.TopicShippingProcessed, mock.Anything).Return(nil)
	publisher.On("Publish", saga.TopicEmailSend, mock.Anything).Return(errors.New("channel closed"))

	err := newTestUseCase(repo, publisher).ProcessShipping(context.Background(), scheduleMessage())
	require.Error(t, err)

	repo.AssertNotCalled(t, "UpdateDeliveryStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessShipping_ConcurrentCreate(t *testing.T) {
	repo := new(MockDeliveryRepository)
	publisher := new(MockPublisher)

	repo.On("GetDeliveryByOrderID", mock.Anything, "A").Return(nil, nil).Once()
	repo.On("CreateDelivery", mock.Anything, mock.Anything).Return(false, nil)
	repo.On("GetDeliveryByOrderID", mock.Anything, "A").
		Return(&entity.Delivery{OrderID: "A", Status: entity.DeliveryStatusShipped, TrackingCode: "TRK00000009"}, nil).Once()

	require.NoError(t, newTestUseCase(repo, publisher).ProcessShipping(context.Background(), scheduleMessage()))
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestProcessShipping_WithoutEmail(t *testing.T) {
	repo := new(MockDeliveryRepository)
	publisher := new(MockPublisher)

	repo.On("GetDeliveryByOrderID", mock.Anything, "A").Return(nil, nil)
	repo.On("CreateDelivery", mock.Anything, mock.Anything).Return(true, nil)
	repo.On("UpdateDeliveryStatus", mock.Anything, "A", entity.DeliveryStatusShipped).Return(nil)
	publisher.On("Publish", saga.TopicShippingProcessed, mock.Anything).Return(nil)

	msg := scheduleMessage()
	msg.CustomerEmail = ""
	require.NoError(t, newTestUseCase(repo, publisher).ProcessShipping(context.Background(), msg))

	assert.Empty(t, publisher.Published(saga.TopicEmailSend))
}

func TestProcessShipping_CancelledDuringDelay(t *testing.T) {
	repo := new(MockDeliveryRepository)
	repo.On("GetDeliveryByOrderID", mock.Anything, "A").Return(nil, nil)

	uc := newTestUseCase(repo, new(MockPublisher))
	uc.processingDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, uc.ProcessShipping(ctx, scheduleMessage()), context.Canceled)
	repo.AssertNotCalled(t, "CreateDelivery", mock.Anything, mock.Anything)
}

func TestNewTrackingCode(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^TRK\d{8}$`), newTrackingCode())
}
