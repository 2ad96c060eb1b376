package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/director74/saga_shop/notification-service/internal/entity"
)

// NotificationRepository доступ к журналу уведомлений
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{
		db: db,
	}
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, notification entity.Notification) (entity.Notification, error) {
	err := r.db.WithContext(ctx).Create(&notification).Error
	return notification, err
}

func (r *NotificationRepository) UpdateNotificationStatus(ctx context.Context, id uint, status, errMessage string) error {
	return r.db.WithContext(ctx).Model(&entity.Notification{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "error": errMessage}).Error
}

// ListNotificationsByOrderID возвращает письма по заказу, новые первыми
func (r *NotificationRepository) ListNotificationsByOrderID(ctx context.Context, orderID string) ([]entity.Notification, error) {
	var notifications []entity.Notification
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) ListAllNotifications(ctx context.Context, limit, offset int) ([]entity.Notification, int64, error) {
	var notifications []entity.Notification
	var total int64

	if err := r.db.WithContext(ctx).Model(&entity.Notification{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).Limit(limit).Offset(offset).Order("created_at DESC").Find(&notifications).Error

	return notifications, total, err
}
