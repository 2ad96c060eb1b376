package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/director74/saga_shop/notification-service/internal/entity"
	apperrors "github.com/director74/saga_shop/pkg/errors"
	pkgMiddleware "github.com/director74/saga_shop/pkg/middleware"
)

// NotificationReader чтение журнала уведомлений
type NotificationReader interface {
	ListOrderNotifications(ctx context.Context, orderID string) (entity.ListNotificationsResponse, error)
	ListAllNotifications(ctx context.Context, limit, offset int) (entity.ListNotificationsResponse, error)
}

type NotificationHandler struct {
	notifications      NotificationReader
	internalMiddleware *pkgMiddleware.InternalAuthMiddleware
}

func NewNotificationHandler(notifications NotificationReader, internalMiddleware *pkgMiddleware.InternalAuthMiddleware) *NotificationHandler {
	return &NotificationHandler{
		notifications:      notifications,
		internalMiddleware: internalMiddleware,
	}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)

	internal := router.Group("/internal")
	internal.Use(h.internalMiddleware.Required())
	{
		internal.GET("/notifications", h.ListAllNotifications)
		internal.GET("/notifications/order/:orderId", h.ListOrderNotifications)
	}
}

func (h *NotificationHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *NotificationHandler) ListOrderNotifications(c *gin.Context) {
	resp, err := h.notifications.ListOrderNotifications(c.Request.Context(), c.Param("orderId"))
	if apperrors.HandleGinError(c, err) {
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) ListAllNotifications(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		apperrors.HandleGinError(c, apperrors.NewBadRequestError("limit должен быть положительным числом"))
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		apperrors.HandleGinError(c, apperrors.NewBadRequestError("offset должен быть неотрицательным числом"))
		return
	}

	resp, err := h.notifications.ListAllNotifications(c.Request.Context(), limit, offset)
	if apperrors.HandleGinError(c, err) {
		return
	}

	c.JSON(http.StatusOK, resp)
}
