package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace-auth/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, logger.Init("production"))

	router := gin.New()
	router.Use(RateLimitMiddleware(1, 2))
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	// The burst allows the first two requests through.
	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}

func TestRateLimitMiddlewareSeparatesClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, logger.Init("production"))

	router := gin.New()
	router.Use(RateLimitMiddleware(1, 1))
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1234"))

	// A different client has its own bucket.
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1234"))
}
