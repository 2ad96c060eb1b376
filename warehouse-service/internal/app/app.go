package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/director74/saga_shop/pkg/errors"
	"github.com/director74/saga_shop/pkg/messaging"
	pkgMiddleware "github.com/director74/saga_shop/pkg/middleware"
	"github.com/director74/saga_shop/warehouse-service/config"
	httpController "github.com/director74/saga_shop/warehouse-service/internal/controller/http"
	rmqController "github.com/director74/saga_shop/warehouse-service/internal/controller/rabbitmq"
	"github.com/director74/saga_shop/warehouse-service/internal/entity"
	"github.com/director74/saga_shop/warehouse-service/internal/repo"
	"github.com/director74/saga_shop/warehouse-service/internal/usecase"
)

// App представляет основное приложение сервиса склада
type App struct {
	config *config.Config
	bus    messaging.Bus
	server *http.Server
}

// NewApp создает новое приложение с указанной конфигурацией
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	bus, err := messaging.InitBus(cfg.RabbitMQ, "warehouse-service")
	if err != nil {
		return nil, apperrors.AppendPrefix(err, "не удалось подключиться к RabbitMQ")
	}

	warehouseRepo := repo.NewWarehouseRepo(entity.DefaultStock())
	warehouseUseCase := usecase.NewWarehouseUseCase(warehouseRepo, bus, cfg.Warehouse.CheckDelay)

	// Настройка обработки сообщений саги
	sagaConsumer := rmqController.NewSagaConsumer(ctx, bus, warehouseUseCase)
	if err := sagaConsumer.Setup(); err != nil {
		bus.Close()
		return nil, apperrors.AppendPrefix(err, "ошибка настройки обработчика сообщений саги")
	}

	router := gin.Default()
	router.Use(apperrors.RecoveryMiddleware())
	router.NoRoute(apperrors.NotFoundHandler())

	warehouseHandler := httpController.NewWarehouseHandler(warehouseUseCase, pkgMiddleware.NewInternalAuthMiddleware(cfg.Internal))
	warehouseHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &App{
		config: cfg,
		bus:    bus,
		server: server,
	}, nil
}

// Run запускает приложение и блокируется до отмены контекста
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Сервис склада запущен на порту %s", a.config.HTTP.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return apperrors.AppendPrefix(err, "ошибка HTTP сервера")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Завершение работы сервиса склада...")
		return a.Shutdown()
	})

	return g.Wait()
}

// Shutdown останавливает HTTP сервер и соединение с RabbitMQ
func (a *App) Shutdown() error {
	errGroup := apperrors.NewErrorGroup()

	ctx, cancel := context.WithTimeout(context.Background(), a.config.HTTP.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		errGroup.AddPrefix(err, "ошибка остановки HTTP сервера")
	}

	if err := a.bus.Close(); err != nil {
		errGroup.AddPrefix(err, "ошибка закрытия соединения с RabbitMQ")
	}

	if errGroup.HasErrors() {
		apperrors.LogError(errGroup, "Shutdown")
		return errGroup
	}

	log.Println("Сервис склада остановлен")
	return nil
}
