package saga

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalAmount(t *testing.T) {
	items := []OrderItem{
		{ProductID: 1, ProductName: "Ноутбук", Price: 1000, Quantity: 2},
		{ProductID: 2, ProductName: "Мышь", Price: 25.5, Quantity: 4},
	}

	assert.InDelta(t, 2102.0, TotalAmount(items), 0.0001)
	assert.Zero(t, TotalAmount(nil))
}

func TestCloneItems(t *testing.T) {
	items := []OrderItem{{ProductID: 1, ProductName: "Ноутбук", Price: 10, Quantity: 1}}

	cloned := CloneItems(items)
	cloned[0].Quantity = 5

	assert.Equal(t, 1, items[0].Quantity)
	assert.Nil(t, CloneItems(nil))
}
