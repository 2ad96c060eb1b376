package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/director74/saga_shop/pkg/saga"
	"github.com/director74/saga_shop/warehouse-service/internal/entity"
	"github.com/director74/saga_shop/warehouse-service/internal/repo"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(topic string, message interface{}) error {
	return m.Called(topic, message).Error(0)
}

func newTestUseCase(pub *MockPublisher, delay time.Duration) *WarehouseUseCase {
	uc := NewWarehouseUseCase(repo.NewWarehouseRepo(entity.DefaultStock()), pub, delay)
	uc.logger = log.New(io.Discard, "", 0)
	return uc
}

func orderWith(id string, items ...saga.OrderItem) saga.OrderCreatedMessage {
	return saga.OrderCreatedMessage{OrderID: id, Items: items}
}

func TestCheckInventory_Available(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Publish", saga.TopicInventoryChecked, mock.MatchedBy(func(msg saga.InventoryCheckedMessage) bool {
		return msg.OrderID == "A" && msg.Available && msg.FailureReason == "" && len(msg.ItemResults) == 1
	})).Return(nil)

	uc := newTestUseCase(pub, 0)
	require.NoError(t, uc.CheckInventory(context.Background(),
		orderWith("A", saga.OrderItem{ProductID: 1, ProductName: "Ноутбук", Quantity: 1})))

	pub.AssertExpectations(t)
	assert.Equal(t, 9, uc.Stock()[0].Available)
}

func TestCheckInventory_Unavailable(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Publish", saga.TopicInventoryChecked, mock.MatchedBy(func(msg saga.InventoryCheckedMessage) bool {
		return !msg.Available && msg.FailureReason == "Товар Монитор недоступен (запрошено: 1, доступно: 0)"
	})).Return(nil)

	uc := newTestUseCase(pub, 0)
	require.NoError(t, uc.CheckInventory(context.Background(),
		orderWith("A", saga.OrderItem{ProductID: 3, ProductName: "Монитор", Quantity: 1})))
	pub.AssertExpectations(t)
}

func TestCheckInventory_RedeliveryRepublishesSameResult(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Publish", saga.TopicInventoryChecked, mock.Anything).Return(nil)

	uc := newTestUseCase(pub, 0)
	order := orderWith("A", saga.OrderItem{ProductID: 5, ProductName: "Клавиатура", Quantity: 3})

	require.NoError(t, uc.CheckInventory(context.Background(), order))
	require.NoError(t, uc.CheckInventory(context.Background(), order))

	pub.AssertNumberOfCalls(t, "Publish", 2)
	for _, call := range pub.Calls {
		assert.True(t, call.Arguments.Get(1).(saga.InventoryCheckedMessage).Available)
	}
}

func TestCheckInventory_PublishErrorKeepsReservation(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("channel closed")).Once()
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

	uc := newTestUseCase(pub, 0)
	order := orderWith("A", saga.OrderItem{ProductID: 2, ProductName: "Мышь", Quantity: 5})

	assert.Error(t, uc.CheckInventory(context.Background(), order))
	require.NoError(t, uc.CheckInventory(context.Background(), order))

	for _, level := range uc.Stock() {
		if level.ProductID == 2 {
			assert.Equal(t, 0, level.Available, "повторная доставка не списывает остатки второй раз")
		}
	}
}

func TestCheckInventory_CancelledWhileWaiting(t *testing.T) {
	uc := newTestUseCase(new(MockPublisher), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := uc.CheckInventory(ctx, orderWith("A", saga.OrderItem{ProductID: 1, ProductName: "Ноутбук", Quantity: 1}))
	assert.ErrorIs(t, err, context.Canceled)

	_, ok := uc.repo.GetReservation("A")
	assert.False(t, ok)
}
