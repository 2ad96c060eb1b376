package config

import (
	"github.com/director74/saga_shop/pkg/config"
	"github.com/director74/saga_shop/pkg/middleware"
)

// Config содержит конфигурацию сервиса заказов
type Config struct {
	HTTP     config.HTTPConfig
	Postgres config.PostgresConfig
	RabbitMQ config.RabbitMQConfig
	Saga     config.SagaConfig
	Internal *middleware.InternalAPIConfig
}

func NewConfig() (*Config, error) {
	// Загружаем общую конфигурацию
	commonConfig := config.LoadCommonConfig("orders", "8080")

	return &Config{
		HTTP:     commonConfig.HTTP,
		Postgres: commonConfig.Postgres,
		RabbitMQ: commonConfig.RabbitMQ,
		Saga:     config.LoadSagaConfig(),
		Internal: middleware.NewInternalAPIConfig(),
	}, nil
}
