package entity

import (
	"time"
)

// PaymentStatus статус платежа
type PaymentStatus string

// Константы для статусов платежа
const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment решение по оплате заказа. На заказ хранится ровно одно решение.
type Payment struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	OrderID       string        `json:"order_id" gorm:"type:varchar(36);not null;uniqueIndex"`
	Amount        float64       `json:"amount" gorm:"type:decimal(12,2);not null"`
	Status        PaymentStatus `json:"status" gorm:"not null"`
	FailureReason string        `json:"failure_reason,omitempty"`
	TransactionID string        `json:"transaction_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Approved возвращает true для проведенного платежа
func (p *Payment) Approved() bool {
	return p.Status == PaymentStatusCompleted
}

// GetPaymentResponse модель ответа при запросе платежа
type GetPaymentResponse struct {
	OrderID       string        `json:"order_id"`
	Amount        float64       `json:"amount"`
	Status        PaymentStatus `json:"status"`
	FailureReason string        `json:"failure_reason,omitempty"`
	TransactionID string        `json:"transaction_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}
