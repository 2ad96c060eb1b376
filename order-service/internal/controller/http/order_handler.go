package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/director74/saga_shop/order-service/internal/entity"
	apperrors "github.com/director74/saga_shop/pkg/errors"
	"github.com/director74/saga_shop/pkg/middleware"
)

// OrderService операции с заказами, доступные через HTTP
type OrderService interface {
	CreateOrder(ctx context.Context, req entity.CreateOrderRequest) (entity.CreateOrderResponse, error)
	GetOrder(ctx context.Context, id string) (entity.GetOrderResponse, error)
	ListSagas() []entity.SagaView
}

type OrderHandler struct {
	orderService       OrderService
	internalMiddleware *middleware.InternalAuthMiddleware
	metricsHandler     http.Handler
}

func NewOrderHandler(
	orderService OrderService,
	internalMiddleware *middleware.InternalAuthMiddleware,
	metricsHandler http.Handler,
) *OrderHandler {
	return &OrderHandler{
		orderService:       orderService,
		internalMiddleware: internalMiddleware,
		metricsHandler:     metricsHandler,
	}
}

func (h *OrderHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)
	if h.metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(h.metricsHandler))
	}

	api := router.Group("/api/v1")
	{
		api.POST("/orders", h.CreateOrder)
		api.GET("/orders/:id", h.GetOrder)
	}

	internal := router.Group("/internal")
	internal.Use(h.internalMiddleware.Required())
	{
		internal.GET("/sagas", h.ListSagas)
	}
}

func (h *OrderHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req entity.CreateOrderRequest
	if !apperrors.BindJSON(c, &req) {
		return
	}

	resp, err := h.orderService.CreateOrder(c.Request.Context(), req)
	if apperrors.HandleGinError(c, err) {
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		apperrors.HandleGinError(c, apperrors.NewValidationError("id", "не может быть пустым"))
		return
	}

	resp, err := h.orderService.GetOrder(c.Request.Context(), id)
	if apperrors.HandleGinError(c, err) {
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListSagas отдает незавершенные саги для диагностики
func (h *OrderHandler) ListSagas(c *gin.Context) {
	sagas := h.orderService.ListSagas()
	c.JSON(http.StatusOK, gin.H{
		"count": len(sagas),
		"sagas": sagas,
	})
}
