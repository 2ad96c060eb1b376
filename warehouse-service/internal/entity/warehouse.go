package entity

import (
	"time"

	"github.com/director74/saga_shop/pkg/saga"
)

// StockLevel остаток товара на складе
type StockLevel struct {
	ProductID uint `json:"product_id"`
	Available int  `json:"available"`
}

// Reservation итог проверки склада по заказу. Остатки списываются только
// если доступны все позиции.
type Reservation struct {
	OrderID       string                  `json:"order_id"`
	Reserved      bool                    `json:"reserved"`
	FailureReason string                  `json:"failure_reason,omitempty"`
	ItemResults   []saga.ItemAvailability `json:"item_results"`
	CheckedAt     time.Time               `json:"checked_at"`
}

// Message переводит резерв в ответ складской ветви
func (r *Reservation) Message() saga.InventoryCheckedMessage {
	results := make([]saga.ItemAvailability, len(r.ItemResults))
	copy(results, r.ItemResults)

	return saga.InventoryCheckedMessage{
		OrderID:       r.OrderID,
		Available:     r.Reserved,
		FailureReason: r.FailureReason,
		ItemResults:   results,
		CheckedAt:     r.CheckedAt,
	}
}

// DefaultStock начальные остатки демонстрационного склада
func DefaultStock() map[uint]int {
	return map[uint]int{
		1: 10,
		2: 5,
		3: 0,
		4: 20,
		5: 3,
	}
}
