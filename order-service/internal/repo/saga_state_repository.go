package repo

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/director74/saga_shop/order-service/internal/entity"
)

// ErrSagaFinished сага по заказу уже завершена и удалена из хранилища
var ErrSagaFinished = errors.New("сага по заказу уже завершена")

// SagaStateRepository хранит состояния живых саг в памяти процесса.
// Мьютекс защищает только карту, состояние каждой саги охраняется ее собственным мьютексом.
type SagaStateRepository struct {
	mu       sync.RWMutex
	sagas    map[string]*entity.Saga
	finished map[string]time.Time
}

func NewSagaStateRepository() *SagaStateRepository {
	return &SagaStateRepository{
		sagas:    make(map[string]*entity.Saga),
		finished: make(map[string]time.Time),
	}
}

// GetOrCreate возвращает сагу заказа, создавая ее при первом обращении.
// created равен true, если запись создана этим вызовом.
func (r *SagaStateRepository) GetOrCreate(orderID string, now time.Time) (*entity.Saga, bool, error) {
	r.mu.RLock()
	s, ok := r.sagas[orderID]
	r.mu.RUnlock()
	if ok {
		return s, false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sagas[orderID]; ok {
		return s, false, nil
	}
	if _, done := r.finished[orderID]; done {
		return nil, false, ErrSagaFinished
	}

	s = entity.NewSaga(orderID, now)
	r.sagas[orderID] = s
	return s, true, nil
}

// Get возвращает сагу, если она есть в хранилище
func (r *SagaStateRepository) Get(orderID string) (*entity.Saga, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sagas[orderID]
	return s, ok
}

// Remove удаляет сагу и запоминает заказ как завершенный
func (r *SagaStateRepository) Remove(orderID string, finishedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sagas, orderID)
	r.finished[orderID] = finishedAt
}

// Discard удаляет сагу без отметки о завершении
func (r *SagaStateRepository) Discard(orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sagas, orderID)
}

// Snapshot возвращает живые саги, упорядоченные по идентификатору заказа.
// Копируется только список указателей, мьютексы саг не захватываются.
func (r *SagaStateRepository) Snapshot() []*entity.Saga {
	r.mu.RLock()
	result := make([]*entity.Saga, 0, len(r.sagas))
	for _, s := range r.sagas {
		result = append(result, s)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].OrderID() < result[j].OrderID()
	})
	return result
}

// Len количество живых саг
func (r *SagaStateRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sagas)
}

// PruneFinished забывает заказы, завершенные раньше before
func (r *SagaStateRepository) PruneFinished(before time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := 0
	for id, at := range r.finished {
		if at.Before(before) {
			delete(r.finished, id)
			pruned++
		}
	}
	return pruned
}
