package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/director74/saga_shop/order-service/internal/entity"
	"github.com/director74/saga_shop/order-service/internal/repo"
	"github.com/director74/saga_shop/pkg/config"
	"github.com/director74/saga_shop/pkg/messaging"
	"github.com/director74/saga_shop/pkg/metrics"
	"github.com/director74/saga_shop/pkg/saga"
)

const (
	PaymentTimeoutReason   = "платежный сервис не ответил за отведенное время"
	InventoryTimeoutReason = "складской сервис не ответил за отведенное время"

	defaultPaymentFailureReason   = "платеж отклонен"
	defaultInventoryFailureReason = "товары недоступны"
)

type branch string

const (
	branchPayment   branch = "payment"
	branchInventory branch = "inventory"
)

// emissionResult итог публикации исхода саги. progress отражает то, что успело уйти в шину.
type emissionResult struct {
	progress entity.EmissionProgress
	err      error
}

// SweepStats итоги одного прохода сборщика
type SweepStats struct {
	Inspected int
	TimedOut  int
	Retried   int
	Completed int
	Pruned    int
}

// SagaOrchestrator координатор саги заказа: собирает ответы платежной и складской ветвей,
// принимает решение и публикует исход ровно один раз
type SagaOrchestrator struct {
	store     SagaStateStore
	publisher messaging.Publisher
	orders    OrderStatusUpdater
	cfg       config.SagaConfig
	metrics   *metrics.SagaMetrics
	logger    *log.Logger
	now       func() time.Time
}

// NewSagaOrchestrator создает новый координатор саги. orders может быть nil,
// тогда исход не записывается в заказ.
func NewSagaOrchestrator(
	store SagaStateStore,
	publisher messaging.Publisher,
	orders OrderStatusUpdater,
	cfg config.SagaConfig,
	m *metrics.SagaMetrics,
	logger *log.Logger,
) *SagaOrchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[SagaOrchestrator] ", log.LstdFlags)
	}
	if m == nil {
		m = metrics.NewSagaMetrics(prometheus.NewRegistry())
	}

	return &SagaOrchestrator{
		store:     store,
		publisher: publisher,
		orders:    orders,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterOrder сохраняет контекст заказа в саге. Может быть вызван до или после первого ответа ветви.
func (o *SagaOrchestrator) RegisterOrder(ctx context.Context, order saga.OrderCreatedMessage) error {
	s, _, err := o.store.GetOrCreate(order.OrderID, o.now())
	if err != nil {
		if errors.Is(err, repo.ErrSagaFinished) {
			o.logger.Printf("[WARN] OrderID=%s: регистрация после завершения саги игнорируется", order.OrderID)
		}
		return fmt.Errorf("регистрация саги %s: %w", order.OrderID, err)
	}

	alreadyRegistered := false
	s.Update(func(st *entity.SagaState) {
		if st.Registered {
			alreadyRegistered = true
			return
		}
		st.Registered = true
		st.CustomerEmail = order.CustomerEmail
		st.CustomerName = order.CustomerName
		st.TotalAmount = order.TotalAmount
		st.Items = saga.CloneItems(order.Items)
	})

	if alreadyRegistered {
		o.logger.Printf("[WARN] OrderID=%s: повторная регистрация заказа игнорируется", order.OrderID)
		return nil
	}

	o.logger.Printf("OrderID=%s: сага зарегистрирована, сумма %.2f, позиций %d", order.OrderID, order.TotalAmount, len(order.Items))
	o.updateActive()

	// Ответы ветвей могли прийти раньше регистрации или одновременно с ней
	o.tryComplete(ctx, s, false)
	return nil
}

// Discard удаляет зарегистрированную сагу, если запросы ветвям так и не были отправлены
func (o *SagaOrchestrator) Discard(orderID string) {
	o.store.Discard(orderID)
	o.updateActive()
	o.logger.Printf("OrderID=%s: сага отменена до отправки запросов", orderID)
}

// HandlePaymentProcessed обрабатывает ответ платежной ветви
func (o *SagaOrchestrator) HandlePaymentProcessed(ctx context.Context, msg saga.PaymentProcessedMessage) error {
	return o.recordBranch(ctx, msg.OrderID, branchPayment, msg.Approved, msg.FailureReason)
}

// HandleInventoryChecked обрабатывает ответ складской ветви
func (o *SagaOrchestrator) HandleInventoryChecked(ctx context.Context, msg saga.InventoryCheckedMessage) error {
	return o.recordBranch(ctx, msg.OrderID, branchInventory, msg.Available, msg.FailureReason)
}

func (o *SagaOrchestrator) recordBranch(ctx context.Context, orderID string, b branch, success bool, reason string) error {
	now := o.now()

	s, _, err := o.store.GetOrCreate(orderID, now)
	if err != nil {
		if errors.Is(err, repo.ErrSagaFinished) {
			o.logger.Printf("OrderID=%s: ответ ветви %s пришел после завершения саги, игнорируем", orderID, b)
			o.metrics.Duplicates.WithLabelValues(string(b)).Inc()
			return nil
		}
		return fmt.Errorf("ответ ветви %s для заказа %s: %w", b, orderID, err)
	}

	duplicate := false
	s.Update(func(st *entity.SagaState) {
		slot := branchSlot(st, b)
		if *slot != nil {
			duplicate = true
			return
		}
		*slot = &entity.BranchResult{
			Success:       success,
			FailureReason: reason,
			ReceivedAt:    now,
		}
	})

	if duplicate {
		o.logger.Printf("OrderID=%s: повторный ответ ветви %s, игнорируем", orderID, b)
		o.metrics.Duplicates.WithLabelValues(string(b)).Inc()
	} else {
		o.logger.Printf("OrderID=%s: ветвь %s ответила, успех=%t", orderID, b, success)
		o.updateActive()
	}

	o.tryComplete(ctx, s, false)
	return nil
}

func branchSlot(st *entity.SagaState, b branch) **entity.BranchResult {
	if b == branchPayment {
		return &st.Payment
	}
	return &st.Inventory
}

// tryComplete завершает сагу, если обе ветви ответили и никто другой ее не завершает.
// force пропускает ожидание регистрации, используется при таймауте.
// Возвращает true, если сага завершена этим вызовом.
func (o *SagaOrchestrator) tryComplete(ctx context.Context, s *entity.Saga, force bool) bool {
	claimed := false
	var snapshot entity.SagaState

	s.Update(func(st *entity.SagaState) {
		if st.Completed || !st.BothReported() || st.Processing {
			return
		}
		if o.cfg.AwaitRegistration && !st.Registered && !force {
			return
		}
		st.Processing = true
		claimed = true
		snapshot = st.Clone()
	})

	if !claimed {
		return false
	}

	if !snapshot.Registered {
		o.logger.Printf("[WARN] OrderID=%s: сага завершается без данных регистрации", snapshot.OrderID)
	}

	result := o.emitOutcome(snapshot)
	finishedAt := o.now()

	if result.err != nil {
		retries := 0
		s.Update(func(st *entity.SagaState) {
			st.Processing = false
			st.Emission = result.progress
			if st.RetryCount < o.cfg.MaxRetries {
				st.RetryCount++
			}
			st.LastRetryAt = &finishedAt
			retries = st.RetryCount
		})
		o.logger.Printf("[ERROR] OrderID=%s: не удалось опубликовать исход саги (попытка %d): %v", snapshot.OrderID, retries, result.err)
		return false
	}

	s.Update(func(st *entity.SagaState) {
		st.Emission = result.progress
		st.Completed = true
	})
	o.store.Remove(snapshot.OrderID, finishedAt)
	o.updateActive()

	approved := snapshot.Approved()
	reason := rejectionReason(snapshot)
	if approved {
		o.metrics.Completed.WithLabelValues("approved").Inc()
		o.logger.Printf("OrderID=%s: сага завершена, заказ подтвержден", snapshot.OrderID)
	} else {
		o.metrics.Completed.WithLabelValues("rejected").Inc()
		o.logger.Printf("OrderID=%s: сага завершена, заказ отклонен: %s", snapshot.OrderID, reason)
	}

	o.recordOrderStatus(ctx, snapshot.OrderID, approved, reason)
	return true
}

// emitOutcome публикует письмо и, для одобренного заказа, команду на доставку.
// Уже опубликованные сообщения повторно не отправляются.
func (o *SagaOrchestrator) emitOutcome(st entity.SagaState) emissionResult {
	progress := st.Emission
	approved := st.Approved()

	if !progress.EmailPublished {
		if err := o.publisher.Publish(saga.TopicEmailSend, o.composeEmail(st, approved)); err != nil {
			o.metrics.SideEffectFailures.WithLabelValues(saga.TopicEmailSend).Inc()
			return emissionResult{progress: progress, err: fmt.Errorf("%s: %w", saga.TopicEmailSend, err)}
		}
		progress.EmailPublished = true
	}

	if approved && !progress.ShippingPublished {
		shipping := saga.ScheduleShippingMessage{
			OrderID:       st.OrderID,
			CustomerName:  st.CustomerName,
			CustomerEmail: st.CustomerEmail,
			Items:         saga.CloneItems(st.Items),
			ScheduledAt:   o.now().UTC(),
		}
		if err := o.publisher.Publish(saga.TopicShippingSchedule, shipping); err != nil {
			o.metrics.SideEffectFailures.WithLabelValues(saga.TopicShippingSchedule).Inc()
			return emissionResult{progress: progress, err: fmt.Errorf("%s: %w", saga.TopicShippingSchedule, err)}
		}
		progress.ShippingPublished = true
	}

	return emissionResult{progress: progress}
}

func (o *SagaOrchestrator) composeEmail(st entity.SagaState, approved bool) saga.SendEmailMessage {
	greeting := "Здравствуйте!"
	if st.CustomerName != "" {
		greeting = fmt.Sprintf("Здравствуйте, %s!", st.CustomerName)
	}

	if approved {
		return saga.SendEmailMessage{
			To:      st.CustomerEmail,
			Subject: fmt.Sprintf("Заказ %s подтвержден", st.OrderID),
			Body: fmt.Sprintf("%s\n\nВаш заказ %s подтвержден: оплата прошла, товары зарезервированы.\n"+
				"Сумма заказа: %.2f\n\nМы сообщим, когда заказ будет передан в доставку.",
				greeting, st.OrderID, st.TotalAmount),
			OrderID: st.OrderID,
			Type:    saga.EmailTypeConfirmed,
		}
	}

	return saga.SendEmailMessage{
		To:      st.CustomerEmail,
		Subject: fmt.Sprintf("Заказ %s не может быть выполнен", st.OrderID),
		Body: fmt.Sprintf("%s\n\nК сожалению, заказ %s не может быть выполнен.\nПричина: %s",
			greeting, st.OrderID, rejectionReason(st)),
		OrderID: st.OrderID,
		Type:    saga.EmailTypeFailed,
	}
}

// rejectionReason собирает причины отказа ветвей, для одобренного заказа пустая строка
func rejectionReason(st entity.SagaState) string {
	var reasons []string
	if st.Payment != nil && !st.Payment.Success {
		reasons = append(reasons, "Оплата: "+orDefault(st.Payment.FailureReason, defaultPaymentFailureReason))
	}
	if st.Inventory != nil && !st.Inventory.Success {
		reasons = append(reasons, "Склад: "+orDefault(st.Inventory.FailureReason, defaultInventoryFailureReason))
	}
	return strings.Join(reasons, "; ")
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func (o *SagaOrchestrator) recordOrderStatus(ctx context.Context, orderID string, approved bool, reason string) {
	if o.orders == nil {
		return
	}

	status := entity.OrderStatusFailed
	if approved {
		status = entity.OrderStatusConfirmed
	}

	if err := o.orders.UpdateOrderStatus(ctx, orderID, status, reason); err != nil {
		o.logger.Printf("[WARN] OrderID=%s: не удалось сохранить статус %s: %v", orderID, status, err)
	}
}

// SweepOnce проверяет все живые саги: завершает просроченные и отмечает повторные попытки
func (o *SagaOrchestrator) SweepOnce(ctx context.Context) SweepStats {
	var stats SweepStats
	now := o.now()

	for _, s := range o.store.Snapshot() {
		if ctx.Err() != nil {
			o.logger.Println("Проход сборщика прерван")
			break
		}
		o.inspect(ctx, s, now, &stats)
	}

	if o.cfg.FinishedRetention > 0 {
		stats.Pruned = o.store.PruneFinished(now.Add(-o.cfg.FinishedRetention))
	}
	o.updateActive()
	return stats
}

func (o *SagaOrchestrator) inspect(ctx context.Context, s *entity.Saga, now time.Time, stats *SweepStats) {
	var (
		timedOut      bool
		retryEmission bool
		expired       bool
		retried       bool
		retryCount    int
		missing       []branch
	)

	s.Update(func(st *entity.SagaState) {
		if st.Completed || st.Processing {
			return
		}
		stats.Inspected++

		if now.Sub(st.CreatedAt) > o.cfg.Timeout {
			expired = true
			if st.Payment == nil {
				st.Payment = &entity.BranchResult{FailureReason: PaymentTimeoutReason, ReceivedAt: now, Synthesized: true}
				missing = append(missing, branchPayment)
			}
			if st.Inventory == nil {
				st.Inventory = &entity.BranchResult{FailureReason: InventoryTimeoutReason, ReceivedAt: now, Synthesized: true}
				missing = append(missing, branchInventory)
			}
			if len(missing) > 0 {
				timedOut = true
				return
			}
		}

		since := st.CreatedAt
		if st.LastRetryAt != nil {
			since = *st.LastRetryAt
		}
		if now.Sub(since) <= o.cfg.RetryInterval {
			return
		}

		// После таймаута регистрацию больше не ждем
		if st.BothReported() && (expired || st.Registered || !o.cfg.AwaitRegistration) {
			retryEmission = true
			return
		}

		if st.RetryCount < o.cfg.MaxRetries {
			st.RetryCount++
			st.LastRetryAt = &now
			retried = true
			retryCount = st.RetryCount
		}
	})

	switch {
	case timedOut:
		stats.TimedOut++
		for _, b := range missing {
			o.metrics.Timeouts.WithLabelValues(string(b)).Inc()
		}
		o.logger.Printf("[WARN] OrderID=%s: истекло время ожидания, нет ответа от ветвей %v", s.OrderID(), missing)
		if o.tryComplete(ctx, s, true) {
			stats.Completed++
		}
	case retryEmission:
		o.logger.Printf("OrderID=%s: повторная публикация исхода саги", s.OrderID())
		if o.tryComplete(ctx, s, expired) {
			stats.Completed++
		}
	case retried:
		stats.Retried++
		o.metrics.Retries.Inc()
		o.logger.Printf("[WARN] OrderID=%s: сага ждет ответов ветвей, попытка %d из %d", s.OrderID(), retryCount, o.cfg.MaxRetries)
	}
}

// RunSweeper запускает периодический проход сборщика до отмены контекста
func (o *SagaOrchestrator) RunSweeper(ctx context.Context) error {
	interval := o.cfg.SweepInterval
	if interval <= 0 {
		o.logger.Printf("[WARN] Некорректный интервал сборщика %v, используется %v", interval, config.DefaultSagaSweepInterval)
		interval = config.DefaultSagaSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	o.logger.Printf("Сборщик саг запущен: интервал %v, таймаут %v, повтор %v (не более %d)",
		interval, o.cfg.Timeout, o.cfg.RetryInterval, o.cfg.MaxRetries)

	for {
		select {
		case <-ctx.Done():
			o.logger.Println("Сборщик саг остановлен")
			return nil
		case <-ticker.C:
			stats := o.SweepOnce(ctx)
			if stats.TimedOut > 0 || stats.Retried > 0 || stats.Completed > 0 {
				o.logger.Printf("Проход сборщика: проверено %d, просрочено %d, повторов %d, завершено %d",
					stats.Inspected, stats.TimedOut, stats.Retried, stats.Completed)
			}
		}
	}
}

// ListSagas возвращает снимки живых саг для внутреннего API
func (o *SagaOrchestrator) ListSagas() []entity.SagaView {
	sagas := o.store.Snapshot()
	views := make([]entity.SagaView, 0, len(sagas))
	for _, s := range sagas {
		st := s.Snapshot()
		views = append(views, entity.SagaView{SagaState: st, Phase: st.Phase()})
	}
	return views
}

func (o *SagaOrchestrator) updateActive() {
	o.metrics.Active.Set(float64(o.store.Len()))
}
