package entity

import (
	"time"

	"github.com/director74/saga_shop/pkg/saga"
)

// Notification запись об отправленном клиенту письме
type Notification struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	OrderID   string         `json:"order_id" gorm:"type:varchar(36);index"`
	Type      saga.EmailType `json:"type" gorm:"type:varchar(16)"`
	Email     string         `json:"email"`
	Subject   string         `json:"subject"`
	Message   string         `json:"message"`
	Status    string         `json:"status"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Возможные статусы уведомлений
const (
	NotificationStatusSent    = "sent"
	NotificationStatusPending = "pending"
	NotificationStatusFailed  = "failed"
)

type GetNotificationResponse struct {
	ID        uint           `json:"id"`
	OrderID   string         `json:"order_id"`
	Type      saga.EmailType `json:"type"`
	Email     string         `json:"email"`
	Subject   string         `json:"subject"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

type ListNotificationsResponse struct {
	Notifications []GetNotificationResponse `json:"notifications"`
	Total         int64                     `json:"total"`
}

// ToResponse преобразует запись в ответ API
func (n Notification) ToResponse() GetNotificationResponse {
	return GetNotificationResponse{
		ID:        n.ID,
		OrderID:   n.OrderID,
		Type:      n.Type,
		Email:     n.Email,
		Subject:   n.Subject,
		Status:    n.Status,
		CreatedAt: n.CreatedAt,
	}
}
