package config

import (
	"time"

	"github.com/director74/saga_shop/pkg/config"
	"github.com/director74/saga_shop/pkg/middleware"
)

// Config содержит конфигурацию сервиса склада
type Config struct {
	HTTP      config.HTTPConfig
	RabbitMQ  config.RabbitMQConfig
	Warehouse WarehouseConfig
	Internal  *middleware.InternalAPIConfig
}

// WarehouseConfig содержит специфичные настройки для сервиса склада
type WarehouseConfig struct {
	CheckDelay time.Duration
}

// NewConfig создает новую конфигурацию сервиса склада
func NewConfig() (*Config, error) {
	// Загружаем общую конфигурацию
	commonConfig := config.LoadCommonConfig("warehouse", "8084")

	return &Config{
		HTTP:     commonConfig.HTTP,
		RabbitMQ: commonConfig.RabbitMQ,
		Warehouse: WarehouseConfig{
			CheckDelay: config.GetEnvAsDuration("WAREHOUSE_CHECK_DELAY", 1500*time.Millisecond),
		},
		Internal: middleware.NewInternalAPIConfig(),
	}, nil
}
