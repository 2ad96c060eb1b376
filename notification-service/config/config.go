package config

import (
	"time"

	"github.com/director74/saga_shop/pkg/config"
	"github.com/director74/saga_shop/pkg/middleware"
)

// Config содержит конфигурацию сервиса уведомлений
type Config struct {
	HTTP     config.HTTPConfig
	Postgres config.PostgresConfig
	RabbitMQ config.RabbitMQConfig
	Mail     MailConfig
	Internal *middleware.InternalAPIConfig
}

// MailConfig содержит настройки для отправки почты
type MailConfig struct {
	// UseSMTP false оставляет заглушку, которая только логирует письма
	UseSMTP      bool
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
	SendDelay    time.Duration
}

// LoadMailConfig загружает конфигурацию для отправки почты
func LoadMailConfig() MailConfig {
	return MailConfig{
		UseSMTP:      config.GetEnvAsBool("SMTP_ENABLED", false),
		SMTPHost:     config.GetEnv("SMTP_HOST", "localhost"),
		SMTPPort:     config.GetEnv("SMTP_PORT", "1025"),
		SMTPUser:     config.GetEnv("SMTP_USER", ""),
		SMTPPassword: config.GetEnv("SMTP_PASSWORD", ""),
		FromEmail:    config.GetEnv("FROM_EMAIL", "notification@example.com"),
		SendDelay:    config.GetEnvAsDuration("EMAIL_SEND_DELAY", time.Second),
	}
}

func NewConfig() (*Config, error) {
	// Загружаем общую конфигурацию
	commonConfig := config.LoadCommonConfig("notifications", "8082")
	mailConfig := LoadMailConfig()

	return &Config{
		HTTP:     commonConfig.HTTP,
		Postgres: commonConfig.Postgres,
		RabbitMQ: commonConfig.RabbitMQ,
		Mail:     mailConfig,
		Internal: middleware.NewInternalAPIConfig(),
	}, nil
}
