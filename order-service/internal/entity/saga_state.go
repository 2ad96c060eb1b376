package entity

import (
	"sync"
	"time"

	"github.com/director74/saga_shop/pkg/saga"
)

// SagaPhase фаза саги, вычисляется по флагам состояния
type SagaPhase string

const (
	SagaPhasePending           SagaPhase = "pending"
	SagaPhasePartiallyReported SagaPhase = "partially_reported"
	SagaPhaseBothReported      SagaPhase = "both_reported"
	SagaPhaseProcessing        SagaPhase = "processing"
	SagaPhaseCompleted         SagaPhase = "completed"
)

// BranchResult ответ одной ветви саги. Отсутствие результата означает, что ветвь еще не ответила.
type BranchResult struct {
	Success       bool      `json:"success"`
	FailureReason string    `json:"failure_reason,omitempty"`
	ReceivedAt    time.Time `json:"received_at"`
	// Synthesized выставляется, если результат создан по таймауту, а не пришел от ветви
	Synthesized bool `json:"synthesized,omitempty"`
}

// EmissionProgress какие исходящие сообщения уже опубликованы
type EmissionProgress struct {
	EmailPublished    bool `json:"email_published"`
	ShippingPublished bool `json:"shipping_published"`
}

// SagaState состояние саги одного заказа
type SagaState struct {
	OrderID string `json:"order_id"`

	// Контекст заказа, заполняется один раз при регистрации
	Registered    bool             `json:"registered"`
	CustomerEmail string           `json:"customer_email,omitempty"`
	CustomerName  string           `json:"customer_name,omitempty"`
	TotalAmount   float64          `json:"total_amount"`
	Items         []saga.OrderItem `json:"items,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	LastRetryAt *time.Time `json:"last_retry_at,omitempty"`
	RetryCount  int        `json:"retry_count"`

	Payment   *BranchResult `json:"payment,omitempty"`
	Inventory *BranchResult `json:"inventory,omitempty"`

	Processing bool             `json:"processing"`
	Completed  bool             `json:"completed"`
	Emission   EmissionProgress `json:"emission"`
}

// PaymentProcessed ответила ли платежная ветвь
func (s SagaState) PaymentProcessed() bool {
	return s.Payment != nil
}

// InventoryChecked ответила ли складская ветвь
func (s SagaState) InventoryChecked() bool {
	return s.Inventory != nil
}

// BothReported обе ветви ответили
func (s SagaState) BothReported() bool {
	return s.PaymentProcessed() && s.InventoryChecked()
}

// Approved заказ одобрен только если обе ветви ответили успехом
func (s SagaState) Approved() bool {
	return s.BothReported() && s.Payment.Success && s.Inventory.Success
}

// Phase текущая фаза саги
func (s SagaState) Phase() SagaPhase {
	switch {
	case s.Completed:
		return SagaPhaseCompleted
	case s.Processing:
		return SagaPhaseProcessing
	case s.BothReported():
		return SagaPhaseBothReported
	case s.PaymentProcessed() || s.InventoryChecked():
		return SagaPhasePartiallyReported
	default:
		return SagaPhasePending
	}
}

// Clone возвращает копию состояния, не разделяющую память с оригиналом
func (s SagaState) Clone() SagaState {
	c := s
	c.Items = saga.CloneItems(s.Items)
	if s.Payment != nil {
		p := *s.Payment
		c.Payment = &p
	}
	if s.Inventory != nil {
		i := *s.Inventory
		c.Inventory = &i
	}
	if s.LastRetryAt != nil {
		t := *s.LastRetryAt
		c.LastRetryAt = &t
	}
	return c
}

// Saga запись хранилища: состояние и мьютекс, который его охраняет
type Saga struct {
	orderID string
	mu      sync.Mutex
	state   SagaState
}

// NewSaga создает сагу для заказа
func NewSaga(orderID string, createdAt time.Time) *Saga {
	return &Saga{
		orderID: orderID,
		state: SagaState{
			OrderID:   orderID,
			CreatedAt: createdAt,
		},
	}
}

// OrderID идентификатор заказа
func (s *Saga) OrderID() string {
	return s.orderID
}

// Update изменяет состояние под мьютексом саги
func (s *Saga) Update(fn func(state *SagaState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// Snapshot копия состояния на текущий момент
func (s *Saga) Snapshot() SagaState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}
