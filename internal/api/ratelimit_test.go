package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alcyxob/gym-manager/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	l := newIPRateLimiter(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"), "burst exhausted")
	assert.True(t, l.allow("10.0.0.2"), "buckets are per client")

	now = now.Add(time.Second)
	assert.True(t, l.allow("10.0.0.1"), "one token refilled")

	now = now.Add(limiterIdleTTL + time.Minute)
	l.sweep()
	assert.Empty(t, l.clients)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(config.RateLimitConfig{RPS: 0.001, Burst: 1}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		r.ServeHTTP(w, req)
		return w
	}
	assert.Equal(t, http.StatusOK, serve().Code)
	w := serve()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(config.RateLimitConfig{}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
