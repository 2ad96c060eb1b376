package middleware

import (
	"net"
	"net/http"

	"github.com/director74/saga_shop/pkg/config"
	apperrors "github.com/director74/saga_shop/pkg/errors"
	"github.com/gin-gonic/gin"
)

// InternalAPIConfig конфигурация для внутреннего API
type InternalAPIConfig struct {
	// TrustedNetworks список доверенных CIDR диапазонов
	TrustedNetworks []string
	// APIKey ключ, который принимается в заголовке
	APIKey string
	// HeaderName имя заголовка для передачи ключа API
	HeaderName string
}

// NewInternalAPIConfig читает конфигурацию из окружения
func NewInternalAPIConfig() *InternalAPIConfig {
	return &InternalAPIConfig{
		TrustedNetworks: config.GetEnvAsSlice("INTERNAL_TRUSTED_NETWORKS", []string{
			"10.0.0.0/8",     // Внутренняя сеть Kubernetes
			"172.16.0.0/12",  // Docker сеть по умолчанию
			"192.168.0.0/16", // Локальная сеть
			"127.0.0.0/8",    // Локальный хост
		}),
		APIKey:     config.GetEnv("INTERNAL_API_KEY", "internal-api-key-for-development"),
		HeaderName: "X-Internal-API-Key",
	}
}

// InternalAuthMiddleware middleware для защиты доступа к внутренним API
type InternalAuthMiddleware struct {
	config   *InternalAPIConfig
	networks []*net.IPNet
}

// NewInternalAuthMiddleware создает новый middleware для защиты внутренних API
func NewInternalAuthMiddleware(cfg *InternalAPIConfig) *InternalAuthMiddleware {
	if cfg == nil {
		cfg = NewInternalAPIConfig()
	}

	networks := make([]*net.IPNet, 0, len(cfg.TrustedNetworks))
	for _, network := range cfg.TrustedNetworks {
		_, ipNet, err := net.ParseCIDR(network)
		if err != nil {
			continue
		}
		networks = append(networks, ipNet)
	}

	return &InternalAuthMiddleware{
		config:   cfg,
		networks: networks,
	}
}

// Required пропускает запрос с корректным API ключом или из доверенной сети
func (m *InternalAuthMiddleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader(m.config.HeaderName); key != "" && key == m.config.APIKey {
			c.Next()
			return
		}

		if m.isIPTrusted(c.ClientIP()) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, apperrors.ErrorResponse(
			"доступ запрещен, этот API доступен только для внутренних сервисов", nil,
		))
	}
}

func (m *InternalAuthMiddleware) isIPTrusted(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	for _, ipNet := range m.networks {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}
