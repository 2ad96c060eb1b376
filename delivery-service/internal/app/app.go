package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/director74/saga_shop/delivery-service/config"
	httpController "github.com/director74/saga_shop/delivery-service/internal/controller/http"
	rmqController "github.com/director74/saga_shop/delivery-service/internal/controller/rabbitmq"
	"github.com/director74/saga_shop/delivery-service/internal/entity"
	"github.com/director74/saga_shop/delivery-service/internal/repo"
	"github.com/director74/saga_shop/delivery-service/internal/usecase"
	"github.com/director74/saga_shop/pkg/database"
	apperrors "github.com/director74/saga_shop/pkg/errors"
	"github.com/director74/saga_shop/pkg/messaging"
	pkgMiddleware "github.com/director74/saga_shop/pkg/middleware"
)

// App представляет основное приложение сервиса доставки
type App struct {
	config *config.Config
	db     *gorm.DB
	bus    messaging.Bus
	server *http.Server
}

// NewApp создает новое приложение с указанной конфигурацией
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Postgres)
	if err != nil {
		return nil, apperrors.AppendPrefix(err, "не удалось подключиться к базе данных")
	}

	// Автомиграция моделей
	if err := database.AutoMigrateWithCleanup(db, &entity.Delivery{}); err != nil {
		return nil, apperrors.AppendPrefix(err, "не удалось выполнить миграцию")
	}

	bus, err := messaging.InitBus(cfg.RabbitMQ, "delivery-service")
	if err != nil {
		database.CloseDB(db)
		return nil, apperrors.AppendPrefix(err, "не удалось подключиться к RabbitMQ")
	}

	deliveryRepo := repo.NewDeliveryRepo(db)
	deliveryUseCase := usecase.NewDeliveryUseCase(deliveryRepo, bus, cfg.Delivery.ProcessingDelay)

	// Настройка обработки сообщений саги
	sagaConsumer := rmqController.NewSagaConsumer(ctx, bus, deliveryUseCase)
	if err := sagaConsumer.Setup(); err != nil {
		bus.Close()
		database.CloseDB(db)
		return nil, apperrors.AppendPrefix(err, "ошибка настройки обработчика сообщений саги")
	}

	router := gin.Default()
	router.Use(apperrors.RecoveryMiddleware())
	router.NoRoute(apperrors.NotFoundHandler())

	deliveryHandler := httpController.NewDeliveryHandler(deliveryUseCase, pkgMiddleware.NewInternalAuthMiddleware(cfg.Internal))
	deliveryHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &App{
		config: cfg,
		db:     db,
		bus:    bus,
		server: server,
	}, nil
}

// Run запускает приложение и блокируется до отмены контекста
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Сервис доставки запущен на порту %s", a.config.HTTP.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return apperrors.AppendPrefix(err, "ошибка HTTP сервера")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Завершение работы сервиса доставки...")
		return a.Shutdown()
	})

	return g.Wait()
}

// Shutdown останавливает HTTP сервер, обработчики сообщений и соединение с базой
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

	if err := database.CloseDB(a.db); err != nil {
		errGroup.AddPrefix(err, "ошибка закрытия соединения с базой данных")
	}

	if errGroup.HasErrors() {
		apperrors.LogError(errGroup, "Shutdown")
		return errGroup
	}

	log.Println("Сервис доставки остановлен")
	return nil
}
