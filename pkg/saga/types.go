package saga

import "time"

// EmailType тип письма клиенту
type EmailType string

const (
	EmailTypeConfirmed EmailType = "confirmed"
	EmailTypeFailed    EmailType = "failed"
	EmailTypeShipped   EmailType = "shipped"
)

// OrderItem представляет позицию заказа в сообщениях саги
type OrderItem struct {
	ProductID   uint    `json:"product_id" validate:"required"`
	ProductName string  `json:"product_name" validate:"required"`
	Price       float64 `json:"price" validate:"gt=0"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
}

// OrderCreatedMessage запрос к ветвям саги, публикуется в order.created
type OrderCreatedMessage struct {
	OrderID       string      `json:"order_id" validate:"required"`
	CustomerEmail string      `json:"customer_email" validate:"required,email"`
	CustomerName  string      `json:"customer_name" validate:"required"`
	Items         []OrderItem `json:"items" validate:"required,min=1,dive"`
	TotalAmount   float64     `json:"total_amount"`
	CreatedAt     time.Time   `json:"created_at"`
}

// PaymentProcessedMessage ответ платежной ветви
type PaymentProcessedMessage struct {
	OrderID       string    `json:"order_id" validate:"required"`
	Approved      bool      `json:"approved"`
	FailureReason string    `json:"failure_reason,omitempty"`
	Amount        float64   `json:"amount"`
	ProcessedAt   time.Time `json:"processed_at"`
}

// ItemAvailability результат проверки одной позиции на складе
type ItemAvailability struct {
	ProductID         uint   `json:"product_id"`
	ProductName       string `json:"product_name"`
	RequestedQuantity int    `json:"requested_quantity"`
	AvailableQuantity int    `json:"available_quantity"`
	Available         bool   `json:"available"`
}

// InventoryCheckedMessage ответ складской ветви
type InventoryCheckedMessage struct {
	OrderID       string             `json:"order_id" validate:"required"`
	Available     bool               `json:"available"`
	FailureReason string             `json:"failure_reason,omitempty"`
	ItemResults   []ItemAvailability `json:"item_results,omitempty"`
	CheckedAt     time.Time          `json:"checked_at"`
}

// SendEmailMessage команда на отправку письма, публикуется в email.send
type SendEmailMessage struct {
	To      string    `json:"to" validate:"required,email"`
	Subject string    `json:"subject" validate:"required"`
	Body    string    `json:"body" validate:"required"`
	OrderID string    `json:"order_id" validate:"required"`
	Type    EmailType `json:"type" validate:"required,oneof=confirmed failed shipped"`
}

// ScheduleShippingMessage команда на отгрузку одобренного заказа
type ScheduleShippingMessage struct {
	OrderID       string      `json:"order_id" validate:"required"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	Items         []OrderItem `json:"items"`
	ScheduledAt   time.Time   `json:"scheduled_at"`
}

// ShippingProcessedMessage ответ службы доставки
type ShippingProcessedMessage struct {
	OrderID        string    `json:"order_id" validate:"required"`
	TrackingNumber string    `json:"tracking_number" validate:"required"`
	ShippedAt      time.Time `json:"shipped_at"`
}
