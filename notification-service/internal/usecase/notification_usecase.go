package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/director74/saga_shop/notification-service/internal/entity"
	"github.com/director74/saga_shop/pkg/saga"
)

// NotificationRepository интерфейс для работы с журналом уведомлений
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification entity.Notification) (entity.Notification, error)
	UpdateNotificationStatus(ctx context.Context, id uint, status, errMessage string) error
	ListNotificationsByOrderID(ctx context.Context, orderID string) ([]entity.Notification, error)
	ListAllNotifications(ctx context.Context, limit, offset int) ([]entity.Notification, int64, error)
}

// EmailSender интерфейс для отправки электронной почты
type EmailSender interface {
	SendEmail(to, subject, message string) error
}

// NotificationUseCase представляет usecase для работы с нотификациями
type NotificationUseCase struct {
	repo        NotificationRepository
	emailSender EmailSender
	sendDelay   time.Duration
	logger      *log.Logger
	now         func() time.Time
}

func NewNotificationUseCase(repo NotificationRepository, emailSender EmailSender, sendDelay time.Duration) *NotificationUseCase {
	return &NotificationUseCase{
		repo:        repo,
		emailSender: emailSender,
		sendDelay:   sendDelay,
		logger:      log.New(log.Writer(), "[NotificationService] ", log.LstdFlags),
		now:         time.Now,
	}
}

// SendEmail записывает письмо в журнал и отправляет его.
// Ошибка отправки возвращается, чтобы сообщение было доставлено повторно.
func (uc *NotificationUseCase) SendEmail(ctx context.Context, msg saga.SendEmailMessage) error {
	now := uc.now().UTC()
	notification, err := uc.repo.CreateNotification(ctx, entity.Notification{
		OrderID:   msg.OrderID,
		Type:      msg.Type,
		Email:     msg.To,
		Subject:   msg.Subject,
		Message:   msg.Body,
		Status:    entity.NotificationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("ошибка при создании уведомления для заказа %s: %w", msg.OrderID, err)
	}

	if err := uc.wait(ctx); err != nil {
		return err
	}

	if err := uc.emailSender.SendEmail(msg.To, msg.Subject, msg.Body); err != nil {
		if updErr := uc.repo.UpdateNotificationStatus(ctx, notification.ID, entity.NotificationStatusFailed, err.Error()); updErr != nil {
			uc.logger.Printf("[ERROR] Не удалось обновить статус уведомления ID %d: %v", notification.ID, updErr)
		}
		return fmt.Errorf("ошибка при отправке письма %s для заказа %s: %w", msg.Type, msg.OrderID, err)
	}

	if err := uc.repo.UpdateNotificationStatus(ctx, notification.ID, entity.NotificationStatusSent, ""); err != nil {
		// письмо уже ушло, повторная доставка дала бы дубль
		uc.logger.Printf("[ERROR] Не удалось обновить статус уведомления ID %d на sent: %v", notification.ID, err)
	}

	uc.logger.Printf("OrderID=%s: письмо %s отправлено на %s", msg.OrderID, msg.Type, msg.To)
	return nil
}

// ListOrderNotifications возвращает письма по заказу
func (uc *NotificationUseCase) ListOrderNotifications(ctx context.Context, orderID string) (entity.ListNotificationsResponse, error) {
	notifications, err := uc.repo.ListNotificationsByOrderID(ctx, orderID)
	if err != nil {
		return entity.ListNotificationsResponse{}, fmt.Errorf("ошибка при получении уведомлений заказа: %w", err)
	}
	return toListResponse(notifications, int64(len(notifications))), nil
}

func (uc *NotificationUseCase) ListAllNotifications(ctx context.Context, limit, offset int) (entity.ListNotificationsResponse, error) {
	notifications, total, err := uc.repo.ListAllNotifications(ctx, limit, offset)
	if err != nil {
		return entity.ListNotificationsResponse{}, fmt.Errorf("ошибка при получении списка уведомлений: %w", err)
	}
	return toListResponse(notifications, total), nil
}

func toListResponse(notifications []entity.Notification, total int64) entity.ListNotificationsResponse {
	resp := entity.ListNotificationsResponse{
		Notifications: make([]entity.GetNotificationResponse, 0, len(notifications)),
		Total:         total,
	}
	for _, n := range notifications {
		resp.Notifications = append(resp.Notifications, n.ToResponse())
	}
	return resp
}

func (uc *NotificationUseCase) wait(ctx context.Context) error {
	if uc.sendDelay <= 0 {
		return nil
	}

	timer := time.NewTimer(uc.sendDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
