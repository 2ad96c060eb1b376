package repo

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/director74/saga_shop/pkg/saga"
	"github.com/director74/saga_shop/warehouse-service/internal/entity"
)

// WarehouseRepo хранит остатки и резервы склада в памяти процесса
type WarehouseRepo struct {
	mu           sync.Mutex
	stock        map[uint]int
	reservations map[string]*entity.Reservation
}

// NewWarehouseRepo создает новый репозиторий склада с начальными остатками
func NewWarehouseRepo(stock map[uint]int) *WarehouseRepo {
	initial := make(map[uint]int, len(stock))
	for id, qty := range stock {
		initial[id] = qty
	}

	return &WarehouseRepo{
		stock:        initial,
		reservations: make(map[string]*entity.Reservation),
	}
}

// Reserve проверяет позиции заказа и резервирует их целиком либо не резервирует ничего.
// Повторный вызов для того же заказа возвращает прежний результат, created равен false.
func (r *WarehouseRepo) Reserve(orderID string, items []saga.OrderItem, now time.Time) (*entity.Reservation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.reservations[orderID]; ok {
		return existing, false
	}

	remaining := make(map[uint]int, len(items))
	results := make([]saga.ItemAvailability, 0, len(items))
	var reasons []string

	for _, item := range items {
		available, seen := remaining[item.ProductID]
		if !seen {
			available = r.stock[item.ProductID]
		}

		ok := available >= item.Quantity
		if ok {
			remaining[item.ProductID] = available - item.Quantity
		} else {
			remaining[item.ProductID] = available
			reasons = append(reasons, fmt.Sprintf("Товар %s недоступен (запрошено: %d, доступно: %d)",
				item.ProductName, item.Quantity, available))
		}

		results = append(results, saga.ItemAvailability{
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			RequestedQuantity: item.Quantity,
			AvailableQuantity: available,
			Available:         ok,
		})
	}

	reservation := &entity.Reservation{
		OrderID:       orderID,
		Reserved:      len(reasons) == 0,
		FailureReason: strings.Join(reasons, "; "),
		ItemResults:   results,
		CheckedAt:     now,
	}

	if reservation.Reserved {
		for id, qty := range remaining {
			r.stock[id] = qty
		}
	}

	r.reservations[orderID] = reservation
	return reservation, true
}

// GetReservation возвращает результат проверки заказа
func (r *WarehouseRepo) GetReservation(orderID string) (*entity.Reservation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reservation, ok := r.reservations[orderID]
	return reservation, ok
}

// Stock возвращает текущие остатки, упорядоченные по товару
func (r *WarehouseRepo) Stock() []entity.StockLevel {
	r.mu.Lock()
	defer r.mu.Unlock()

	levels := make([]entity.StockLevel, 0, len(r.stock))
	for id, qty := range r.stock {
		levels = append(levels, entity.StockLevel{ProductID: id, Available: qty})
	}
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].ProductID < levels[j].ProductID
	})
	return levels
}
