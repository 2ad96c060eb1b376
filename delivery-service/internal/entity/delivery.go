package entity

import (
	"time"
)

// DeliveryStatus статус доставки
type DeliveryStatus string

// Константы для статусов доставки
const (
	DeliveryStatusScheduled DeliveryStatus = "scheduled" // Трек выдан, результат еще не опубликован
	DeliveryStatusShipped   DeliveryStatus = "shipped"   // Отправлено, клиент уведомлен
)

// Delivery представляет информацию о доставке заказа
type Delivery struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrderID        string         `json:"order_id" gorm:"type:varchar(36);not null;uniqueIndex"`
	Status         DeliveryStatus `json:"status" gorm:"not null;default:'scheduled'"`
	RecipientName  string         `json:"recipient_name"`
	RecipientEmail string         `json:"recipient_email"`
	TrackingCode   string         `json:"tracking_code" gorm:"not null"`
	ShippedAt      time.Time      `json:"shipped_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName указывает имя таблицы для Delivery
func (Delivery) TableName() string {
	return "delivery"
}

// GetDeliveryResponse ответ с информацией о доставке
type GetDeliveryResponse struct {
	OrderID      string         `json:"order_id"`
	Status       DeliveryStatus `json:"status"`
	TrackingCode string         `json:"tracking_code"`
	ShippedAt    time.Time      `json:"shipped_at"`
}

// ToResponse преобразует доставку в ответ API
func (d Delivery) ToResponse() GetDeliveryResponse {
	return GetDeliveryResponse{
		OrderID:      d.OrderID,
		Status:       d.Status,
		TrackingCode: d.TrackingCode,
		ShippedAt:    d.ShippedAt,
	}
}
