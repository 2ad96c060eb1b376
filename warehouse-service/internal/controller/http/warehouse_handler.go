package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgMiddleware "github.com/director74/saga_shop/pkg/middleware"
	"github.com/director74/saga_shop/warehouse-service/internal/entity"
)

// StockReader чтение остатков склада
type StockReader interface {
	Stock() []entity.StockLevel
}

// WarehouseHandler обработчик HTTP запросов склада
type WarehouseHandler struct {
	stock              StockReader
	internalMiddleware *pkgMiddleware.InternalAuthMiddleware
}

// NewWarehouseHandler создает новый обработчик HTTP запросов склада
func NewWarehouseHandler(stock StockReader, internalMiddleware *pkgMiddleware.InternalAuthMiddleware) *WarehouseHandler {
	return &WarehouseHandler{
		stock:              stock,
		internalMiddleware: internalMiddleware,
	}
}

// RegisterRoutes регистрирует маршруты
func (h *WarehouseHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)

	internal := router.Group("/internal")
	internal.Use(h.internalMiddleware.Required())
	{
		internal.GET("/stock", h.GetStock)
	}
}

func (h *WarehouseHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetStock возвращает текущие остатки
func (h *WarehouseHandler) GetStock(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.stock.Stock()})
}
