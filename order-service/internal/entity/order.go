package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/director74/saga_shop/pkg/saga"
)

// OrderStatus статус заказа
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusShipped   OrderStatus = "shipped"
)

// Order хранит заказ клиента. Позиции лежат в JSON колонке, они не меняются после создания.
type Order struct {
	ID             string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerEmail  string         `json:"customer_email" gorm:"not null"`
	CustomerName   string         `json:"customer_name" gorm:"not null"`
	Items          datatypes.JSON `json:"items"`
	TotalAmount    float64        `json:"total_amount"`
	Status         OrderStatus    `json:"status" gorm:"index"`
	FailureReason  string         `json:"failure_reason,omitempty"`
	TrackingNumber string         `json:"tracking_number,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewOrder собирает заказ со статусом created
func NewOrder(id, email, name string, items []saga.OrderItem, createdAt time.Time) (*Order, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации позиций заказа: %w", err)
	}

	return &Order{
		ID:            id,
		CustomerEmail: email,
		CustomerName:  name,
		Items:         datatypes.JSON(raw),
		TotalAmount:   saga.TotalAmount(items),
		Status:        OrderStatusCreated,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}, nil
}

// OrderItems разбирает позиции заказа
func (o *Order) OrderItems() ([]saga.OrderItem, error) {
	var items []saga.OrderItem
	if len(o.Items) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(o.Items, &items); err != nil {
		return nil, fmt.Errorf("ошибка разбора позиций заказа %s: %w", o.ID, err)
	}
	return items, nil
}

// CreateOrderItemRequest позиция в запросе на создание заказа
type CreateOrderItemRequest struct {
	ProductID   uint    `json:"product_id" binding:"required"`
	ProductName string  `json:"product_name" binding:"required"`
	Price       float64 `json:"price" binding:"gt=0"`
	Quantity    int     `json:"quantity" binding:"gt=0"`
}

// CreateOrderRequest запрос на создание заказа
type CreateOrderRequest struct {
	CustomerEmail string                   `json:"customer_email" binding:"required,email"`
	CustomerName  string                   `json:"customer_name" binding:"required"`
	Items         []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// SagaItems переводит позиции запроса в формат сообщений саги
func (r CreateOrderRequest) SagaItems() []saga.OrderItem {
	items := make([]saga.OrderItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, saga.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
		})
	}
	return items
}

// CreateOrderResponse ответ на запрос создания заказа
type CreateOrderResponse struct {
	OrderID     string      `json:"order_id"`
	Status      OrderStatus `json:"status"`
	TotalAmount float64     `json:"total_amount"`
	Message     string      `json:"message"`
}

// GetOrderResponse ответ с данными заказа
type GetOrderResponse struct {
	ID             string           `json:"id"`
	CustomerEmail  string           `json:"customer_email"`
	CustomerName   string           `json:"customer_name"`
	Items          []saga.OrderItem `json:"items"`
	TotalAmount    float64          `json:"total_amount"`
	Status         OrderStatus      `json:"status"`
	FailureReason  string           `json:"failure_reason,omitempty"`
	TrackingNumber string           `json:"tracking_number,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// SagaView представление саги во внутреннем API
type SagaView struct {
	SagaState
	Phase SagaPhase `json:"phase"`
}
