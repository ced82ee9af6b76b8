package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	t.Run("budget per window", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("10.0.0.1"), "request %d", i+1)
		}
		assert.False(t, limiter.Allow("10.0.0.1"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		limiter := NewRateLimiter(2, time.Minute)

		assert.True(t, limiter.Allow("10.0.0.1"))
		assert.True(t, limiter.Allow("10.0.0.1"))
		assert.False(t, limiter.Allow("10.0.0.1"))

		assert.True(t, limiter.Allow("10.0.0.2"))
	})

	t.Run("window reset restores budget", func(t *testing.T) {
		limiter := NewRateLimiter(1, 40*time.Millisecond)

		assert.True(t, limiter.Allow("10.0.0.3"))
		assert.False(t, limiter.Allow("10.0.0.3"))

		time.Sleep(50 * time.Millisecond)
		assert.True(t, limiter.Allow("10.0.0.3"))
	})
}

func TestRateLimiterRemaining(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute)

	assert.Equal(t, 5, limiter.Remaining("fresh"))

	limiter.Allow("fresh")
	limiter.Allow("fresh")
	assert.Equal(t, 3, limiter.Remaining("fresh"))
}

func TestRateLimiterConcurrency(t *testing.T) {
	limiter := NewRateLimiter(100, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 150; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowed)
}

func rateLimitedEngine(mw gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.Use(mw)
	engine.POST("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return engine
}

func postLogin(engine *gin.Engine, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = addr
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("serves within budget then blocks", func(t *testing.T) {
		engine := rateLimitedEngine(RateLimit(NewRateLimiter(2, time.Minute)))

		assert.Equal(t, http.StatusOK, postLogin(engine, "10.1.1.1:1000").Code)
		assert.Equal(t, http.StatusOK, postLogin(engine, "10.1.1.1:1000").Code)

		w := postLogin(engine, "10.1.1.1:1000")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")
	})

	t.Run("advertises budget headers", func(t *testing.T) {
		engine := rateLimitedEngine(RateLimit(NewRateLimiter(5, time.Minute)))

		w := postLogin(engine, "10.1.1.2:1000")
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	})
}

func TestRateLimitByKey(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	engine := rateLimitedEngine(RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.GetHeader("X-Portal-Login")
	}))

	send := func(login string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/login", nil)
		req.Header.Set("X-Portal-Login", login)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("alice@example.com").Code)
	assert.Equal(t, http.StatusTooManyRequests, send("alice@example.com").Code)
	assert.Equal(t, http.StatusOK, send("bob@example.com").Code)
}

func TestAuthRateLimit(t *testing.T) {
	t.Run("blocks with retry hint", func(t *testing.T) {
		engine := rateLimitedEngine(AuthRateLimit(NewRateLimiter(1, time.Minute)))

		assert.Equal(t, http.StatusOK, postLogin(engine, "10.2.2.1:1000").Code)

		w := postLogin(engine, "10.2.2.1:1000")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "60", w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "Too many authentication attempts")
	})

	t.Run("budget headers on success", func(t *testing.T) {
		engine := rateLimitedEngine(AuthRateLimit(NewRateLimiter(5, time.Minute)))

		w := postLogin(engine, "10.2.2.2:1000")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("limits per client address", func(t *testing.T) {
		engine := rateLimitedEngine(AuthRateLimit(NewRateLimiter(1, time.Minute)))

		assert.Equal(t, http.StatusOK, postLogin(engine, "10.2.2.3:1000").Code)
		assert.Equal(t, http.StatusTooManyRequests, postLogin(engine, "10.2.2.3:1000").Code)
		assert.Equal(t, http.StatusOK, postLogin(engine, "10.2.2.4:1000").Code)
	})

	t.Run("auth prefix isolates shared limiter from API traffic", func(t *testing.T) {
		shared := NewRateLimiter(2, time.Minute)

		engine := gin.New()
		auth := engine.Group("/auth")
		auth.Use(AuthRateLimit(shared))
		auth.POST("/login", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
		engine.GET("/tenants", RateLimit(shared), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"data": []string{}})
		})

		send := func(method, path string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, path, nil)
			req.RemoteAddr = "10.2.2.5:1000"
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			return w
		}

		assert.Equal(t, http.StatusOK, send("POST", "/auth/login").Code)
		assert.Equal(t, http.StatusOK, send("POST", "/auth/login").Code)
		assert.Equal(t, http.StatusTooManyRequests, send("POST", "/auth/login").Code)

		// Same address still has its plain-key budget
		assert.Equal(t, http.StatusOK, send("GET", "/tenants").Code)
	})
}
