package app

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/director74/saga_shop/notification-service/config"
	httpController "github.com/director74/saga_shop/notification-service/internal/controller/http"
	rabbitmqController "github.com/director74/saga_shop/notification-service/internal/controller/rabbitmq"
	"github.com/director74/saga_shop/notification-service/internal/entity"
	"github.com/director74/saga_shop/notification-service/internal/repo"
	"github.com/director74/saga_shop/notification-service/internal/usecase"
	"github.com/director74/saga_shop/pkg/database"
	apperrors "github.com/director74/saga_shop/pkg/errors"
	"github.com/director74/saga_shop/pkg/messaging"
	pkgMiddleware "github.com/director74/saga_shop/pkg/middleware"
)

// App представляет приложение
type App struct {
	config     *config.Config
	httpServer *http.Server
	db         *gorm.DB
	bus        messaging.Bus
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	// Инициализируем PostgreSQL
	db, err := database.NewPostgresDB(cfg.Postgres)
	if err != nil {
		return nil, apperrors.AppendPrefix(err, "не удалось подключиться к базе данных")
	}

	// Автомиграция
	if err := database.AutoMigrateWithCleanup(db, &entity.Notification{}); err != nil {
		return nil, apperrors.AppendPrefix(err, "не удалось выполнить миграцию")
	}

	bus, err := messaging.InitBus(cfg.RabbitMQ, "notification-service")
	if err != nil {
		database.CloseDB(db)
		return nil, apperrors.AppendPrefix(err, "не удалось подключиться к RabbitMQ")
	}

	notificationRepo := repo.NewNotificationRepository(db)
	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, newEmailSender(cfg.Mail), cfg.Mail.SendDelay)

	emailConsumer := rabbitmqController.NewEmailConsumer(ctx, bus, notificationUseCase)
	if err := emailConsumer.Setup(); err != nil {
		bus.Close()
		database.CloseDB(db)
		return nil, apperrors.AppendPrefix(err, "ошибка при настройке обработчика email.send")
	}

	router := gin.Default()

	router.Use(apperrors.RecoveryMiddleware())
	router.Use(apperrors.ErrorMiddleware())
	router.NoRoute(apperrors.NotFoundHandler())
	router.NoMethod(apperrors.MethodNotAllowedHandler())

	notificationHandler := httpController.NewNotificationHandler(notificationUseCase, pkgMiddleware.NewInternalAuthMiddleware(cfg.Internal))
	notificationHandler.RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &App{
		config:     cfg,
		httpServer: httpServer,
		db:         db,
		bus:        bus,
	}, nil
}

func newEmailSender(cfg config.MailConfig) usecase.EmailSender {
	if cfg.UseSMTP {
		return usecase.NewSmtpEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.FromEmail)
	}
	return usecase.NewDummyEmailSender()
}

// Run запускает приложение и блокируется до отмены контекста
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
		<-gctx.Done()
		log.Println("Получен сигнал завершения, закрываем приложение...")
		return a.Shutdown()
	})

	return g.Wait()
}

// Shutdown корректно завершает работу приложения
func (a *App) Shutdown() error {
	errGroup := apperrors.NewErrorGroup()

	ctx, cancel := context.WithTimeout(context.Background(), a.config.HTTP.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		errGroup.AddPrefix(err, "ошибка при закрытии HTTP сервера")
	}

	if err := a.bus.Close(); err != nil {
		errGroup.AddPrefix(err, "ошибка при закрытии соединения с RabbitMQ")
	}

	if err := database.CloseDB(a.db); err != nil {
		errGroup.AddPrefix(err, "ошибка при закрытии соединения с базой данных")
	}

	if errGroup.HasErrors() {
		apperrors.LogError(errGroup, "Shutdown")
		return errGroup
	}

	log.Println("Приложение успешно завершено")
	return nil
}
