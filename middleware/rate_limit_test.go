package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitByIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewIPRateLimiter(1, 2, time.Minute)
	defer rl.Stop()

	r := gin.New()
	r.GET("/", RateLimitByIP(rl), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":4000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusNoContent, call("192.0.2.1").Code)
	assert.Equal(t, http.StatusNoContent, call("192.0.2.1").Code)

	w := call("192.0.2.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")

	assert.Equal(t, http.StatusNoContent, call("192.0.2.2").Code)
}

func TestForgetIdle(t *testing.T) {
	rl := NewIPRateLimiter(60, 1, time.Minute)
	defer rl.Stop()

	now := time.Now()
	ok, _ := rl.reserve("a", now)
	require.True(t, ok)
	ok, _ = rl.reserve("b", now.Add(90*time.Second))
	require.True(t, ok)

	rl.forgetIdle(now.Add(2 * time.Minute))
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.clients, "a")
	assert.Contains(t, rl.clients, "b")
}
