package usecase

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/director74/saga_shop/payment-service/internal/entity"
	"github.com/director74/saga_shop/pkg/messaging"
	"github.com/director74/saga_shop/pkg/saga"
)

// DeclinedByBankReason причина отказа при неудачной симуляции шлюза
const DeclinedByBankReason = "Платеж отклонен банком"

// PaymentRepository интерфейс для работы с платежами
type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment *entity.Payment) (bool, error)
	GetPaymentByOrderID(ctx context.Context, orderID string) (*entity.Payment, error)
}

// GatewayConfig параметры симуляции платежного шлюза
type GatewayConfig struct {
	ApprovalRate    float64
	ProcessingDelay time.Duration
	// MaxAmount лимит суммы платежа, 0 без ограничения
	MaxAmount float64
}

// PaymentUseCase реализует бизнес-логику для платежей
type PaymentUseCase struct {
	paymentRepo PaymentRepository
	publisher   messaging.Publisher
	gateway     GatewayConfig
	logger      *log.Logger

	random func() float64
	now    func() time.Time
}

// NewPaymentUseCase создает новый use case для платежей
func NewPaymentUseCase(paymentRepo PaymentRepository, publisher messaging.Publisher, gateway GatewayConfig) *PaymentUseCase {
	return &PaymentUseCase{
		paymentRepo: paymentRepo,
		publisher:   publisher,
		gateway:     gateway,
		logger:      log.New(log.Writer(), "[PaymentService] ", log.LstdFlags),
		random:      rand.Float64,
		now:         time.Now,
	}
}

// ProcessOrder принимает решение по оплате заказа и публикует payment.processed.
// Для повторно доставленного заказа публикуется ранее принятое решение.
func (uc *PaymentUseCase) ProcessOrder(ctx context.Context, order saga.OrderCreatedMessage) error {
	payment, err := uc.paymentRepo.GetPaymentByOrderID(ctx, order.OrderID)
	if err != nil {
		return fmt.Errorf("ошибка получения платежа для заказа %s: %w", order.OrderID, err)
	}

	if payment != nil {
		uc.logger.Printf("OrderID=%s: решение по платежу уже принято (%s), публикуем повторно", order.OrderID, payment.Status)
		return uc.publishResult(payment)
	}

	uc.logger.Printf("OrderID=%s: обработка платежа на сумму %.2f", order.OrderID, order.TotalAmount)

	if err := uc.wait(ctx); err != nil {
		return err
	}

	payment = uc.simulatePaymentGateway(order)

	created, err := uc.paymentRepo.CreatePayment(ctx, payment)
	if err != nil {
		return fmt.Errorf("ошибка сохранения платежа для заказа %s: %w", order.OrderID, err)
	}
	if !created {
		// Параллельная доставка того же заказа успела сохранить решение раньше
		payment, err = uc.paymentRepo.GetPaymentByOrderID(ctx, order.OrderID)
		if err != nil {
			return fmt.Errorf("ошибка получения сохраненного платежа для заказа %s: %w", order.OrderID, err)
		}
		if payment == nil {
			return fmt.Errorf("платеж для заказа %s не найден после конфликта записи", order.OrderID)
		}
	}

	return uc.publishResult(payment)
}

// GetPaymentForOrder возвращает платеж для заказа
func (uc *PaymentUseCase) GetPaymentForOrder(ctx context.Context, orderID string) (*entity.Payment, error) {
	payment, err := uc.paymentRepo.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения платежа для заказа: %w", err)
	}
	return payment, nil
}

func (uc *PaymentUseCase) wait(ctx context.Context) error {
	if uc.gateway.ProcessingDelay <= 0 {
		return nil
	}

	timer := time.NewTimer(uc.gateway.ProcessingDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// simulatePaymentGateway имитирует обработку платежа через платежный шлюз
func (uc *PaymentUseCase) simulatePaymentGateway(order saga.OrderCreatedMessage) *entity.Payment {
	now := uc.now().UTC()
	payment := &entity.Payment{
		OrderID:   order.OrderID,
		Amount:    order.TotalAmount,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch {
	case uc.gateway.MaxAmount > 0 && order.TotalAmount > uc.gateway.MaxAmount:
		payment.Status = entity.PaymentStatusFailed
		payment.FailureReason = fmt.Sprintf("Сумма %.2f превышает лимит %.2f", order.TotalAmount, uc.gateway.MaxAmount)
	case uc.random() < uc.gateway.ApprovalRate:
		payment.Status = entity.PaymentStatusCompleted
		payment.TransactionID = fmt.Sprintf("TRX-%d", rand.Intn(1000000))
	default:
		payment.Status = entity.PaymentStatusFailed
		payment.FailureReason = DeclinedByBankReason
	}

	return payment
}

func (uc *PaymentUseCase) publishResult(payment *entity.Payment) error {
	msg := saga.PaymentProcessedMessage{
		OrderID:       payment.OrderID,
		Approved:      payment.Approved(),
		FailureReason: payment.FailureReason,
		Amount:        payment.Amount,
		ProcessedAt:   payment.CreatedAt,
	}

	if err := uc.publisher.Publish(saga.TopicPaymentProcessed, msg); err != nil {
		return fmt.Errorf("ошибка публикации результата платежа для заказа %s: %w", payment.OrderID, err)
	}

	uc.logger.Printf("OrderID=%s: платеж обработан, approved=%t", payment.OrderID, msg.Approved)
	return nil
}
