package config

import (
	"time"

	"github.com/director74/saga_shop/pkg/config"
	"github.com/director74/saga_shop/pkg/middleware"
)

// Config содержит конфигурацию сервиса доставки
type Config struct {
	HTTP     config.HTTPConfig
	Postgres config.PostgresConfig
	RabbitMQ config.RabbitMQConfig
	Delivery DeliveryConfig
	Internal *middleware.InternalAPIConfig
}

// DeliveryConfig содержит специфичные настройки для сервиса доставки
type DeliveryConfig struct {
	ProcessingDelay time.Duration
}

// NewConfig создает новую конфигурацию сервиса доставки
func NewConfig() (*Config, error) {
	// Загружаем общую конфигурацию
	commonConfig := config.LoadCommonConfig("delivery", "8085")

	return &Config{
		HTTP:     commonConfig.HTTP,
		Postgres: commonConfig.Postgres,
		RabbitMQ: commonConfig.RabbitMQ,
		Delivery: DeliveryConfig{
			ProcessingDelay: config.GetEnvAsDuration("DELIVERY_PROCESSING_DELAY", 3*time.Second),
		},
		Internal: middleware.NewInternalAPIConfig(),
	}, nil
}
