package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestRouter(cfg *InternalAPIConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/internal/sagas", NewInternalAuthMiddleware(cfg).Required(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestInternalAuth(t *testing.T) {
	cfg := &InternalAPIConfig{
		TrustedNetworks: []string{"10.0.0.0/8", "bad-cidr"},
		APIKey:          "secret",
		HeaderName:      "X-Internal-API-Key",
	}
	router := newTestRouter(cfg)

	tests := []struct {
		name       string
		remoteAddr string
		key        string
		want       int
	}{
		{"trusted network", "10.1.2.3:5000", "", http.StatusOK},
		{"valid key from outside", "8.8.8.8:5000", "secret", http.StatusOK},
		{"wrong key from outside", "8.8.8.8:5000", "nope", http.StatusForbidden},
		{"no key from outside", "8.8.8.8:5000", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/internal/sagas", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.key != "" {
				req.Header.Set("X-Internal-API-Key", tt.key)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}
