package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "saga_shop"

// SagaMetrics метрики координатора саги
type SagaMetrics struct {
	Completed          *prometheus.CounterVec
	Timeouts           *prometheus.CounterVec
	SideEffectFailures *prometheus.CounterVec
	Retries            prometheus.Counter
	Duplicates         *prometheus.CounterVec
	Active             prometheus.Gauge
}

// NewSagaMetrics регистрирует метрики в переданном реестре
func NewSagaMetrics(reg prometheus.Registerer) *SagaMetrics {
	factory := promauto.With(reg)

	return &SagaMetrics{
		Completed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "saga",
			Name:      "completed_total",
			Help:      "Количество завершенных саг по исходу.",
		}, []string{"outcome"}),
		Timeouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "saga",
			Name:      "timeouts_total",
			Help:      "Количество ветвей, не ответивших вовремя.",
		}, []string{"branch"}),
		SideEffectFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "saga",
			Name:      "side_effect_failures_total",
			Help:      "Ошибки публикации писем и команд доставки.",
		}, []string{"topic"}),
		Retries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "saga",
			Name:      "retries_total",
			Help:      "Количество повторных попыток, отмеченных сборщиком.",
		}),
		Duplicates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "saga",
			Name:      "duplicate_replies_total",
			Help:      "Повторные ответы ветвей, которые были проигнорированы.",
		}, []string{"branch"}),
		Active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "saga",
			Name:      "active",
			Help:      "Количество саг в хранилище.",
		}),
	}
}
