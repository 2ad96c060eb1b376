package app

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/director74/saga_shop/order-service/config"
	httpController "github.com/director74/saga_shop/order-service/internal/controller/http"
	rabbitmqController "github.com/director74/saga_shop/order-service/internal/controller/rabbitmq"
	"github.com/director74/saga_shop/order-service/internal/entity"
	"github.com/director74/saga_shop/order-service/internal/repo"
	"github.com/director74/saga_shop/order-service/internal/usecase"
	"github.com/director74/saga_shop/pkg/database"
	apperrors "github.com/director74/saga_shop/pkg/errors"
	"github.com/director74/saga_shop/pkg/messaging"
	"github.com/director74/saga_shop/pkg/metrics"
	"github.com/director74/saga_shop/pkg/middleware"
)

// App представляет приложение
type App struct {
	config       *config.Config
	httpServer   *http.Server
	db           *gorm.DB
	bus          *messaging.RabbitBus
	orchestrator *usecase.SagaOrchestrator
}

func NewApp(ctx context.Context, config *config.Config) (*App, error) {
	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(config.Postgres)
	if err != nil {
		return nil, apperrors.AppendPrefix(err, "не удалось подключиться к базе данных")
	}

	if err := database.AutoMigrateWithCleanup(db, &entity.Order{}); err != nil {
		return nil, apperrors.AppendPrefix(err, "не удалось выполнить миграцию")
	}

	// Инициализируем шину сообщений
	bus, err := messaging.InitBus(config.RabbitMQ, "order-service")
	if err != nil {
		database.CloseDB(db)
		return nil, apperrors.AppendPrefix(err, "не удалось подключиться к RabbitMQ")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	sagaMetrics := metrics.NewSagaMetrics(registry)

	// Создаем репозитории
	orderRepo := repo.NewOrderRepository(db)
	sagaStateRepo := repo.NewSagaStateRepository()

	orchestrator := usecase.NewSagaOrchestrator(sagaStateRepo, bus, orderRepo, config.Saga, sagaMetrics, nil)
	orderUseCase := usecase.NewOrderUseCase(orderRepo, bus, orchestrator)

	// Подписываемся на ответы ветвей до приема первых заказов
	sagaConsumer := rabbitmqController.NewSagaConsumer(ctx, bus, orchestrator, nil)
	if err := sagaConsumer.Setup(); err != nil {
		bus.Close()
		database.CloseDB(db)
		return nil, apperrors.AppendPrefix(err, "ошибка при настройке обработчика саги")
	}

	shippingConsumer := rabbitmqController.NewShippingConsumer(ctx, bus, orderUseCase, nil)
	if err := shippingConsumer.Setup(); err != nil {
		// Логгируем ошибку, но не останавливаем приложение, т.к. сага работает и без трек-номеров
		log.Printf("ВНИМАНИЕ: Ошибка при настройке ShippingConsumer: %v", err)
	}

	orderHandler := httpController.NewOrderHandler(
		orderUseCase,
		middleware.NewInternalAuthMiddleware(config.Internal),
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	)

	// Инициализируем Gin роутер
	router := gin.Default()

	// Добавляем middleware для обработки ошибок и восстановления после паники
	router.Use(apperrors.RecoveryMiddleware())
	router.Use(apperrors.ErrorMiddleware())

	// Настраиваем обработчики для 404 и 405 ошибок
	router.NoRoute(apperrors.NotFoundHandler())
	router.NoMethod(apperrors.MethodNotAllowedHandler())

	orderHandler.RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:         ":" + config.HTTP.Port,
		Handler:      router,
		ReadTimeout:  config.HTTP.ReadTimeout,
		WriteTimeout: config.HTTP.WriteTimeout,
	}

	return &App{
		config:       config,
		httpServer:   httpServer,
		db:           db,
		bus:          bus,
		orchestrator: orchestrator,
	}, nil
}

// Run запускает HTTP сервер и сборщик саг до отмены контекста
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("HTTP сервер запущен на порту %s", a.config.HTTP.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return apperrors.AppendPrefix(err, "ошибка HTTP сервера")
		}
		return nil
	})

	g.Go(func() error {
		return a.orchestrator.RunSweeper(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Получен сигнал завершения, закрываем приложение...")
		return a.Shutdown()
	})

	return g.Wait()
}

// Shutdown корректно завершает работу приложения
func (a *App) Shutdown() error {
	errGroup := apperrors.NewErrorGroup()

	// Закрываем HTTP сервер
	if a.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.config.HTTP.ShutdownTimeout)
		defer cancel()

		if err := a.httpServer.Shutdown(ctx); err != nil {
			errGroup.AddPrefix(err, "ошибка при закрытии HTTP сервера")
		}
	}

	// Останавливаем обработчики и закрываем соединение с RabbitMQ
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			errGroup.AddPrefix(err, "ошибка при закрытии соединения с RabbitMQ")
		}
	}

	// Закрываем соединение с базой данных
	if a.db != nil {
		if err := database.CloseDB(a.db); err != nil {
			errGroup.AddPrefix(err, "ошибка при закрытии соединения с базой данных")
		}
	}

	if errGroup.HasErrors() {
		apperrors.LogError(errGroup, "Shutdown")
		return errGroup
	}

	log.Println("Приложение успешно завершено")
	return nil
}
