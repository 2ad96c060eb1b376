package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/director74/saga_shop/order-service/config"
	"github.com/director74/saga_shop/order-service/internal/app"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка при загрузке конфигурации: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orderApp, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Ошибка при создании приложения: %v", err)
	}

	// Запускаем приложение
	if err := orderApp.Run(ctx); err != nil {
		log.Fatalf("Ошибка при запуске приложения: %v", err)
	}
}
