package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	t.Run("blocks requests exceeding limit", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)
		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("client"), "request %d should be allowed", i+1)
		}
		assert.False(t, limiter.Allow("client"))
		assert.Equal(t, 0, limiter.Remaining("client"))
	})

	t.Run("separate limits per key", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute)
		assert.True(t, limiter.Allow("a"))
		assert.False(t, limiter.Allow("a"))
		assert.True(t, limiter.Allow("b"))
	})

	t.Run("window reset", func(t *testing.T) {
		limiter := NewRateLimiter(1, 20*time.Millisecond)
		assert.True(t, limiter.Allow("c"))
		assert.False(t, limiter.Allow("c"))
		time.Sleep(30 * time.Millisecond)
		assert.True(t, limiter.Allow("c"))
	})
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	router := gin.New()
	router.Use(RateLimit(limiter))
	router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")
}

func TestRateLimitByEmail(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	router := gin.New()
	router.Use(RateLimitByKey(limiter, EmailKey))
	router.POST("/send-code", func(c *gin.Context) {
		var body struct {
			Email string `json:"email"`
		}
		// the body stays readable after the key extractor consumed it
		assert.NoError(t, c.ShouldBindBodyWithJSON(&body))
		c.String(http.StatusOK, body.Email)
	})

	send := func(email string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/send-code", strings.NewReader(`{"email":"`+email+`"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := send("ana@aceros.cl")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "ana@aceros.cl", first.Body.String())
	assert.Equal(t, http.StatusTooManyRequests, send("ANA@aceros.cl").Code)
	assert.Equal(t, http.StatusOK, send("luis@aceros.cl").Code)
}
