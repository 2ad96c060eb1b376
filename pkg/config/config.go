package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CommonConfig содержит общую конфигурацию, используемую во всех сервисах
type CommonConfig struct {
	HTTP     HTTPConfig
	Postgres PostgresConfig
	RabbitMQ RabbitMQConfig
}

// HTTPConfig содержит настройки HTTP сервера
type HTTPConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// PostgresConfig содержит настройки базы данных PostgreSQL
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RabbitMQConfig содержит настройки RabbitMQ
type RabbitMQConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	VHost    string
	// Exchange общий topic exchange, через который ходят все сообщения саги
	Exchange string
	// Workers количество параллельных обработчиков на одну очередь
	Workers int
	// Prefetch лимит неподтвержденных сообщений на канал
	Prefetch int
}

// SagaConfig содержит параметры координатора саги
type SagaConfig struct {
	SweepInterval     time.Duration
	Timeout           time.Duration
	RetryInterval     time.Duration
	MaxRetries        int
	AwaitRegistration bool
	// FinishedRetention сколько помнить завершенные заказы, чтобы отбрасывать дубли
	FinishedRetention time.Duration
}

// LoadCommonConfig загружает общую конфигурацию из переменных окружения
func LoadCommonConfig(serviceName string, port string) *CommonConfig {
	// Загружаем переменные окружения из .env файла, если он существует
	godotenv.Load()

	return &CommonConfig{
		HTTP: HTTPConfig{
			Port:            GetEnv("HTTP_PORT", port),
			ReadTimeout:     GetEnvAsDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    GetEnvAsDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: GetEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: PostgresConfig{
			Host:     GetEnv("POSTGRES_HOST", "localhost"),
			Port:     GetEnv("POSTGRES_PORT", "5432"),
			User:     GetEnv("POSTGRES_USER", "postgres"),
			Password: GetEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:   GetEnv("POSTGRES_DB", serviceName),
			SSLMode:  GetEnv("POSTGRES_SSLMODE", "disable"),

			MaxOpenConns:    GetEnvAsInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    GetEnvAsInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: GetEnvAsDuration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		RabbitMQ: RabbitMQConfig{
			Host:     GetEnv("RABBITMQ_HOST", "localhost"),
			Port:     GetEnv("RABBITMQ_PORT", "5672"),
			User:     GetEnv("RABBITMQ_USER", "guest"),
			Password: GetEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    GetEnv("RABBITMQ_VHOST", "/"),
			Exchange: GetEnv("SAGA_EXCHANGE", "saga_exchange"),
			Workers:  GetEnvAsInt("RABBITMQ_WORKERS", 4),
			Prefetch: GetEnvAsInt("RABBITMQ_PREFETCH", 16),
		},
	}
}

// DefaultSagaSweepInterval интервал прохода сборщика саг по умолчанию
const DefaultSagaSweepInterval = 30 * time.Second

// LoadSagaConfig загружает параметры таймаутов и повторов саги
func LoadSagaConfig() SagaConfig {
	return SagaConfig{
		SweepInterval:     GetEnvAsPositiveDuration("SAGA_SWEEP_INTERVAL", DefaultSagaSweepInterval),
		Timeout:           GetEnvAsPositiveDuration("SAGA_TIMEOUT", 5*time.Minute),
		RetryInterval:     GetEnvAsPositiveDuration("SAGA_RETRY_INTERVAL", time.Minute),
		MaxRetries:        GetEnvAsInt("SAGA_MAX_RETRIES", 3),
		AwaitRegistration: GetEnvAsBool("SAGA_AWAIT_REGISTRATION", false),
		FinishedRetention: GetEnvAsDuration("SAGA_FINISHED_RETENTION", time.Hour),
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func GetEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := GetEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := GetEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := GetEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// GetEnvAsPositiveDuration как GetEnvAsDuration, но нулевое или отрицательное значение заменяется значением по умолчанию
func GetEnvAsPositiveDuration(key string, defaultValue time.Duration) time.Duration {
	if value := GetEnvAsDuration(key, defaultValue); value > 0 {
		return value
	}
	return defaultValue
}

// GetEnvAsSlice читает список значений, разделенных запятой
func GetEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
