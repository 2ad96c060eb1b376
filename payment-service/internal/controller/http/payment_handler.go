package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/director74/saga_shop/payment-service/internal/entity"
	apperrors "github.com/director74/saga_shop/pkg/errors"
	pkgMiddleware "github.com/director74/saga_shop/pkg/middleware"
)

// PaymentReader чтение решений по платежам
type PaymentReader interface {
	GetPaymentForOrder(ctx context.Context, orderID string) (*entity.Payment, error)
}

// PaymentHandler обработчик HTTP запросов для платежей
type PaymentHandler struct {
	payments           PaymentReader
	internalMiddleware *pkgMiddleware.InternalAuthMiddleware
}

// NewPaymentHandler создает новый обработчик платежей
func NewPaymentHandler(payments PaymentReader, internalMiddleware *pkgMiddleware.InternalAuthMiddleware) *PaymentHandler {
	return &PaymentHandler{
		payments:           payments,
		internalMiddleware: internalMiddleware,
	}
}

// RegisterRoutes регистрирует маршруты. Платежи доступны только внутренним сервисам.
func (h *PaymentHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)

	internal := router.Group("/internal")
	internal.Use(h.internalMiddleware.Required())
	{
		internal.GET("/payments/order/:orderId", h.GetPaymentByOrder)
	}
}

// HealthCheck обрабатывает запрос на проверку работоспособности сервиса
func (h *PaymentHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetPaymentByOrder возвращает решение по оплате заказа
func (h *PaymentHandler) GetPaymentByOrder(c *gin.Context) {
	orderID := c.Param("orderId")

	payment, err := h.payments.GetPaymentForOrder(c.Request.Context(), orderID)
	if apperrors.HandleGinError(c, err) {
		return
	}
	if payment == nil {
		apperrors.HandleGinError(c, apperrors.NewNotFoundError("Платеж для заказа", orderID))
		return
	}

	c.JSON(http.StatusOK, entity.GetPaymentResponse{
		OrderID:       payment.OrderID,
		Amount:        payment.Amount,
		Status:        payment.Status,
		FailureReason: payment.FailureReason,
		TransactionID: payment.TransactionID,
		CreatedAt:     payment.CreatedAt,
	})
}
