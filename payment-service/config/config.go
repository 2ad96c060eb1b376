package config

import (
	"time"

	"github.com/director74/saga_shop/pkg/config"
	"github.com/director74/saga_shop/pkg/middleware"
)

// Config содержит конфигурацию платежного сервиса
type Config struct {
	HTTP     config.HTTPConfig
	Postgres config.PostgresConfig
	RabbitMQ config.RabbitMQConfig
	Payment  PaymentConfig
	Internal *middleware.InternalAPIConfig
}

// PaymentConfig параметры симуляции платежного шлюза
type PaymentConfig struct {
	ApprovalRate    float64
	ProcessingDelay time.Duration
	MaxAmount       float64
}

// NewConfig создает новую конфигурацию платежного сервиса
func NewConfig() (*Config, error) {
	// Загружаем общую конфигурацию
	commonConfig := config.LoadCommonConfig("payments", "8083")

	return &Config{
		HTTP:     commonConfig.HTTP,
		Postgres: commonConfig.Postgres,
		RabbitMQ: commonConfig.RabbitMQ,
		Payment: PaymentConfig{
			ApprovalRate:    config.GetEnvAsFloat("PAYMENT_APPROVAL_RATE", 0.7),
			ProcessingDelay: config.GetEnvAsDuration("PAYMENT_PROCESSING_DELAY", 2*time.Second),
			MaxAmount:       config.GetEnvAsFloat("PAYMENT_MAX_AMOUNT", 0),
		},
		Internal: middleware.NewInternalAPIConfig(),
	}, nil
}
