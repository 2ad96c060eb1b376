package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/director74/saga_shop/delivery-service/internal/entity"
	apperrors "github.com/director74/saga_shop/pkg/errors"
	pkgMiddleware "github.com/director74/saga_shop/pkg/middleware"
)

// DeliveryReader чтение доставок
type DeliveryReader interface {
	GetDeliveryByOrderID(ctx context.Context, orderID string) (*entity.GetDeliveryResponse, error)
}

// DeliveryHandler обработчик HTTP запросов для доставки
type DeliveryHandler struct {
	deliveries         DeliveryReader
	internalMiddleware *pkgMiddleware.InternalAuthMiddleware
}

// NewDeliveryHandler создает новый обработчик HTTP запросов для доставки
func NewDeliveryHandler(deliveries DeliveryReader, internalMiddleware *pkgMiddleware.InternalAuthMiddleware) *DeliveryHandler {
	return &DeliveryHandler{
		deliveries:         deliveries,
		internalMiddleware: internalMiddleware,
	}
}

// RegisterRoutes регистрирует маршруты для доставки
func (h *DeliveryHandler) RegisterRoutes(router *gin.Engine) {
	// Добавляем эндпоинт для проверки работоспособности сервиса
	router.GET("/health", h.HealthCheck)

	internal := router.Group("/internal")
	internal.Use(h.internalMiddleware.Required())
	{
		internal.GET("/delivery/order/:orderId", h.GetDeliveryByOrderID)
	}
}

// HealthCheck обрабатывает запрос на проверку работоспособности сервиса
func (h *DeliveryHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetDeliveryByOrderID возвращает доставку заказа
func (h *DeliveryHandler) GetDeliveryByOrderID(c *gin.Context) {
	orderID := c.Param("orderId")

	delivery, err := h.deliveries.GetDeliveryByOrderID(c.Request.Context(), orderID)
	if apperrors.HandleGinError(c, err) {
		return
	}
	if delivery == nil {
		apperrors.HandleGinError(c, apperrors.NewNotFoundError("Доставка", orderID))
		return
	}

	c.JSON(http.StatusOK, delivery)
}
