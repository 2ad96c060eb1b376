package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/director74/saga_shop/payment-service/config"
	"github.com/director74/saga_shop/payment-service/internal/app"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Создание приложения
	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Ошибка создания приложения: %v", err)
	}

	// Запуск приложения
	if err := application.Run(ctx); err != nil {
		log.Fatalf("Ошибка запуска приложения: %v", err)
	}
}
