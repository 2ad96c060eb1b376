package usecase

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/director74/saga_shop/delivery-service/internal/entity"
	"github.com/director74/saga_shop/pkg/messaging"
	"github.com/director74/saga_shop/pkg/saga"
)

// DeliveryRepository интерфейс хранилища доставок
type DeliveryRepository interface {
	GetDeliveryByOrderID(ctx context.Context, orderID string) (*entity.Delivery, error)
	CreateDelivery(ctx context.Context, delivery *entity.Delivery) (bool, error)
	UpdateDeliveryStatus(ctx context.Context, orderID string, status entity.DeliveryStatus) error
}

// DeliveryUseCase бизнес-логика для работы с доставкой
type DeliveryUseCase struct {
	repo            DeliveryRepository
	publisher       messaging.Publisher
	processingDelay time.Duration
	logger          *log.Logger

	now          func() time.Time
	trackingCode func() string
}

// NewDeliveryUseCase создает новый use case для доставки
func NewDeliveryUseCase(repo DeliveryRepository, publisher messaging.Publisher, processingDelay time.Duration) *DeliveryUseCase {
	return &DeliveryUseCase{
		repo:            repo,
		publisher:       publisher,
		processingDelay: processingDelay,
		logger:          log.New(log.Writer(), "[DeliveryService] ", log.LstdFlags),
		now:             time.Now,
		trackingCode:    newTrackingCode,
	}
}

func newTrackingCode() string {
	return fmt.Sprintf("TRK%08d", rand.Intn(100000000))
}

// ProcessShipping отгружает одобренный заказ: выдает трек-номер, публикует shipping.processed
// и письмо клиенту. Повторная доставка уже отгруженного заказа ничего не публикует.
func (u *DeliveryUseCase) ProcessShipping(ctx context.Context, msg saga.ScheduleShippingMessage) error {
	delivery, err := u.repo.GetDeliveryByOrderID(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("ошибка получения доставки для заказа %s: %w", msg.OrderID, err)
	}

	if delivery == nil {
		u.logger.Printf("OrderID=%s: планирование доставки", msg.OrderID)

		if err := u.wait(ctx); err != nil {
			return err
		}

		if delivery, err = u.schedule(ctx, msg); err != nil {
			return err
		}
	}

	if delivery.Status == entity.DeliveryStatusShipped {
		u.logger.Printf("OrderID=%s: заказ уже отгружен (трек %s), повтор пропущен", msg.OrderID, delivery.TrackingCode)
		return nil
	}

	if err := u.publishShipped(delivery); err != nil {
		return err
	}

	if err := u.repo.UpdateDeliveryStatus(ctx, delivery.OrderID, entity.DeliveryStatusShipped); err != nil {
		// результат уже опубликован, повтор даст только дубль, который заказ отбросит
		u.logger.Printf("[ERROR] OrderID=%s: не удалось обновить статус доставки: %v", delivery.OrderID, err)
	}

	u.logger.Printf("OrderID=%s: доставка оформлена, трек %s", delivery.OrderID, delivery.TrackingCode)
	return nil
}

// GetDeliveryByOrderID возвращает доставку заказа, nil если ее нет
func (u *DeliveryUseCase) GetDeliveryByOrderID(ctx context.Context, orderID string) (*entity.GetDeliveryResponse, error) {
	delivery, err := u.repo.GetDeliveryByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения доставки: %w", err)
	}
	if delivery == nil {
		return nil, nil
	}

	resp := delivery.ToResponse()
	return &resp, nil
}

func (u *DeliveryUseCase) schedule(ctx context.Context, msg saga.ScheduleShippingMessage) (*entity.Delivery, error) {
	now := u.now().UTC()
	delivery := &entity.Delivery{
		OrderID:        msg.OrderID,
		Status:         entity.DeliveryStatusScheduled,
		RecipientName:  msg.CustomerName,
		RecipientEmail: msg.CustomerEmail,
		TrackingCode:   u.trackingCode(),
		ShippedAt:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := u.repo.CreateDelivery(ctx, delivery)
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения доставки для заказа %s: %w", msg.OrderID, err)
	}
	if created {
		return delivery, nil
	}

	// Параллельная доставка того же сообщения успела выдать трек раньше
	stored, err := u.repo.GetDeliveryByOrderID(ctx, msg.OrderID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сохраненной доставки для заказа %s: %w", msg.OrderID, err)
	}
	if stored == nil {
		return nil, fmt.Errorf("доставка для заказа %s не найдена после конфликта записи", msg.OrderID)
	}
	return stored, nil
}

func (u *DeliveryUseCase) publishShipped(delivery *entity.Delivery) error {
	processed := saga.ShippingProcessedMessage{
		OrderID:        delivery.OrderID,
		TrackingNumber: delivery.TrackingCode,
		ShippedAt:      delivery.ShippedAt,
	}
	if err := u.publisher.Publish(saga.TopicShippingProcessed, processed); err != nil {
		return fmt.Errorf("ошибка публикации %s для заказа %s: %w", saga.TopicShippingProcessed, delivery.OrderID, err)
	}

	if delivery.RecipientEmail == "" {
		u.logger.Printf("[WARN] OrderID=%s: адрес клиента неизвестен, письмо об отправке не отправлено", delivery.OrderID)
		return nil
	}

	if err := u.publisher.Publish(saga.TopicEmailSend, shippedEmail(delivery)); err != nil {
		return fmt.Errorf("ошибка публикации %s для заказа %s: %w", saga.TopicEmailSend, delivery.OrderID, err)
	}
	return nil
}

func shippedEmail(delivery *entity.Delivery) saga.SendEmailMessage {
	greeting := "Здравствуйте!"
	if delivery.RecipientName != "" {
		greeting = fmt.Sprintf("Здравствуйте, %s!", delivery.RecipientName)
	}

	return saga.SendEmailMessage{
		To:      delivery.RecipientEmail,
		Subject: fmt.Sprintf("Заказ %s отправлен!", delivery.OrderID),
		Body: fmt.Sprintf("%s\n\nВаш заказ %s отправлен.\nТрек-номер: %s\nДата отправки: %s\n\nОтслеживайте доставку по трек-номеру.",
			greeting, delivery.OrderID, delivery.TrackingCode, delivery.ShippedAt.Format("02.01.2006 15:04")),
		OrderID: delivery.OrderID,
		Type:    saga.EmailTypeShipped,
	}
}

func (u *DeliveryUseCase) wait(ctx context.Context) error {
	if u.processingDelay <= 0 {
		return nil
	}

	timer := time.NewTimer(u.processingDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
