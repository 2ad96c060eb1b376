package repo

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/director74/saga_shop/pkg/saga"
	"github.com/director74/saga_shop/warehouse-service/internal/entity"
)

func stockOf(r *WarehouseRepo, productID uint) int {
	for _, level := range r.Stock() {
		if level.ProductID == productID {
			return level.Available
		}
	}
	return 0
}

func TestReserve_AllAvailable(t *testing.T) {
	r := NewWarehouseRepo(entity.DefaultStock())

	res, created := r.Reserve("A", []saga.OrderItem{
		{ProductID: 1, ProductName: "Ноутбук", Quantity: 2},
		{ProductID: 2, ProductName: "Мышь", Quantity: 5},
	}, time.Now())

	require.True(t, created)
	assert.True(t, res.Reserved)
	assert.Empty(t, res.FailureReason)
	assert.Len(t, res.ItemResults, 2)
	assert.Equal(t, 8, stockOf(r, 1))
	assert.Equal(t, 0, stockOf(r, 2))
}

func TestReserve_AllOrNothing(t *testing.T) {
	r := NewWarehouseRepo(entity.DefaultStock())

	res, _ := r.Reserve("A", []saga.OrderItem{
		{ProductID: 1, ProductName: "Ноутбук", Quantity: 2},
		{ProductID: 3, ProductName: "Монитор", Quantity: 1},
		{ProductID: 5, ProductName: "Клавиатура", Quantity: 4},
	}, time.Now())

	assert.False(t, res.Reserved)
	assert.Equal(t,
		"Товар Монитор недоступен (запрошено: 1, доступно: 0); Товар Клавиатура недоступен (запрошено: 4, доступно: 3)",
		res.FailureReason)
	assert.True(t, res.ItemResults[0].Available)
	assert.False(t, res.ItemResults[1].Available)
	assert.Equal(t, 10, stockOf(r, 1), "остатки не списываются при частичной доступности")
}

func TestReserve_RepeatedProductLines(t *testing.T) {
	r := NewWarehouseRepo(map[uint]int{1: 3})

	res, _ := r.Reserve("A", []saga.OrderItem{
		{ProductID: 1, ProductName: "Ноутбук", Quantity: 2},
		{ProductID: 1, ProductName: "Ноутбук", Quantity: 2},
	}, time.Now())

	assert.False(t, res.Reserved)
	assert.True(t, res.ItemResults[0].Available)
	assert.Equal(t, 1, res.ItemResults[1].AvailableQuantity, "вторая строка видит остаток после первой")
	assert.Contains(t, res.FailureReason, "(запрошено: 2, доступно: 1)")
	assert.Equal(t, 3, stockOf(r, 1))
}

func TestReserve_Idempotent(t *testing.T) {
	r := NewWarehouseRepo(map[uint]int{1: 3})
	items := []saga.OrderItem{{ProductID: 1, ProductName: "Ноутбук", Quantity: 2}}

	first, created := r.Reserve("A", items, time.Now())
	require.True(t, created)

	second, created := r.Reserve("A", items, time.Now())
	assert.False(t, created)
	assert.Same(t, first, second)
	assert.Equal(t, 1, stockOf(r, 1))

	got, ok := r.GetReservation("A")
	require.True(t, ok)
	assert.True(t, got.Reserved)
}

func TestReserve_ConcurrentOrdersNeverOversell(t *testing.T) {
	r := NewWarehouseRepo(map[uint]int{4: 20})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Reserve(fmt.Sprintf("order-%d", i), []saga.OrderItem{{ProductID: 4, ProductName: "Кабель", Quantity: 1}}, time.Now())
		}(i)
	}
	wg.Wait()

	reserved := 0
	for i := 0; i < 50; i++ {
		res, ok := r.GetReservation(fmt.Sprintf("order-%d", i))
		require.True(t, ok)
		if res.Reserved {
			reserved++
		}
	}

	assert.Equal(t, 20, reserved)
	assert.Equal(t, 0, stockOf(r, 4))
}
