package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/director74/saga_shop/order-service/internal/entity"
	"github.com/director74/saga_shop/order-service/internal/repo"
	apperrors "github.com/director74/saga_shop/pkg/errors"
	"github.com/director74/saga_shop/pkg/messaging"
	"github.com/director74/saga_shop/pkg/saga"
)

const publishFailureReason = "не удалось отправить заказ в обработку"

// OrderUseCase представляет usecase для работы с заказами
type OrderUseCase struct {
	repo         OrderRepository
	publisher    messaging.Publisher
	orchestrator *SagaOrchestrator
	logger       *log.Logger
	now          func() time.Time
	newID        func() string
}

func NewOrderUseCase(orderRepo OrderRepository, publisher messaging.Publisher, orchestrator *SagaOrchestrator) *OrderUseCase {
	return &OrderUseCase{
		repo:         orderRepo,
		publisher:    publisher,
		orchestrator: orchestrator,
		logger:       log.New(log.Writer(), "[OrderUseCase] ", log.LstdFlags),
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// CreateOrder сохраняет заказ, регистрирует сагу и запускает ветви оплаты и склада
func (uc *OrderUseCase) CreateOrder(ctx context.Context, req entity.CreateOrderRequest) (entity.CreateOrderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	items := req.SagaItems()
	now := uc.now().UTC()

	order, err := entity.NewOrder(uc.newID(), req.CustomerEmail, req.CustomerName, items, now)
	if err != nil {
		return entity.CreateOrderResponse{}, apperrors.NewInternalServerError(err)
	}

	uc.logger.Printf("[Order] Создание заказа: OrderID=%s, Amount=%.2f, Items=%d", order.ID, order.TotalAmount, len(items))

	if err := uc.repo.Create(ctx, order); err != nil {
		return entity.CreateOrderResponse{}, apperrors.NewInternalServerError(err)
	}

	msg := saga.OrderCreatedMessage{
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		CustomerName:  order.CustomerName,
		Items:         items,
		TotalAmount:   order.TotalAmount,
		CreatedAt:     now,
	}

	// Сагу регистрируем до публикации, чтобы ответы ветвей застали контекст заказа
	if err := uc.orchestrator.RegisterOrder(ctx, msg); err != nil {
		if errors.Is(err, repo.ErrSagaFinished) {
			return entity.CreateOrderResponse{}, apperrors.NewAlreadyExistsError("Заказ", order.ID)
		}
		return entity.CreateOrderResponse{}, apperrors.NewInternalServerError(err)
	}

	if err := uc.publisher.Publish(saga.TopicOrderCreated, msg); err != nil {
		uc.orchestrator.Discard(order.ID)
		if updErr := uc.repo.UpdateOrderStatus(ctx, order.ID, entity.OrderStatusFailed, publishFailureReason); updErr != nil {
			uc.logger.Printf("[ERROR] OrderID=%s: не удалось отметить заказ как failed: %v", order.ID, updErr)
		}
		return entity.CreateOrderResponse{}, apperrors.NewInternalServerError(fmt.Errorf("публикация %s: %w", saga.TopicOrderCreated, err))
	}

	return entity.CreateOrderResponse{
		OrderID:     order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Message:     "Заказ принят в обработку",
	}, nil
}

func (uc *OrderUseCase) GetOrder(ctx context.Context, id string) (entity.GetOrderResponse, error) {
	order, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrOrderNotFound) {
			return entity.GetOrderResponse{}, apperrors.NewNotFoundError("Заказ", id)
		}
		return entity.GetOrderResponse{}, apperrors.NewInternalServerError(err)
	}

	items, err := order.OrderItems()
	if err != nil {
		return entity.GetOrderResponse{}, apperrors.NewInternalServerError(err)
	}

	return entity.GetOrderResponse{
		ID:             order.ID,
		CustomerEmail:  order.CustomerEmail,
		CustomerName:   order.CustomerName,
		Items:          items,
		TotalAmount:    order.TotalAmount,
		Status:         order.Status,
		FailureReason:  order.FailureReason,
		TrackingNumber: order.TrackingNumber,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}, nil
}

// MarkShipped фиксирует передачу заказа в доставку. Повторное или запоздавшее событие не считается ошибкой.
func (uc *OrderUseCase) MarkShipped(ctx context.Context, msg saga.ShippingProcessedMessage) error {
	err := uc.repo.MarkShipped(ctx, msg.OrderID, msg.TrackingNumber)
	if errors.Is(err, repo.ErrOrderNotUpdated) {
		uc.logger.Printf("[WARN] OrderID=%s: заказ не найден или уже в финальном статусе, трек %s не сохранен", msg.OrderID, msg.TrackingNumber)
		return nil
	}
	if err != nil {
		return err
	}

	uc.logger.Printf("OrderID=%s: заказ передан в доставку, трек %s", msg.OrderID, msg.TrackingNumber)
	return nil
}

// ListSagas возвращает живые саги для внутреннего API
func (uc *OrderUseCase) ListSagas() []entity.SagaView {
	return uc.orchestrator.ListSagas()
}
