package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLimiterPoolIsPerKey(t *testing.T) {
	pool := NewLimiterPool(0.001, 2, time.Minute)
	defer pool.Stop()

	assert.True(t, pool.Allow("10.0.0.1"))
	assert.True(t, pool.Allow("10.0.0.1"))
	assert.False(t, pool.Allow("10.0.0.1"))

	assert.True(t, pool.Allow("10.0.0.2"))
}

func TestLimiterPoolEvictsIdleKeys(t *testing.T) {
	pool := NewLimiterPool(0.001, 1, time.Minute)
	defer pool.Stop()

	assert.True(t, pool.Allow("k"))
	assert.False(t, pool.Allow("k"))

	pool.evict(time.Now().Add(time.Second))
	assert.Empty(t, pool.m)
	assert.True(t, pool.Allow("k"))
}

func TestLimiterPoolStopIsIdempotent(t *testing.T) {
	pool := NewLimiterPool(1, 1, 0)
	pool.StartCleanup(time.Millisecond)
	pool.Stop()
	pool.Stop()
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pool := NewLimiterPool(0.001, 1, time.Minute)
	defer pool.Stop()

	r := gin.New()
	r.POST("/x", RateLimit(pool), func(c *gin.Context) { c.Status(http.StatusAccepted) })

	do := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusAccepted, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}
