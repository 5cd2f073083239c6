package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"blog-admin/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type memoryCounter struct {
	mu   sync.Mutex
	hits map[string]int64
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{hits: make(map[string]int64)}
}

func (m *memoryCounter) Hit(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[key]++
	return m.hits[key], nil
}

func rateLimitedRouter(counter WriteCounter, limit int) *gin.Engine {
	router := setupTestRouter()
	router.Use(func(c *gin.Context) {
		if user := c.GetHeader("X-User"); user != "" {
			c.Set("user_id", user)
		}
		c.Next()
	})
	router.Use(WriteRateLimit(counter, limit, time.Minute, logger.Discard()))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	router.GET("/posts", ok)
	router.POST("/posts", ok)
	router.PUT("/posts/:id", ok)
	router.DELETE("/posts/:id", ok)
	return router
}

func send(router *gin.Engine, method, path, user string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	if user != "" {
		req.Header.Set("X-User", user)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestWriteRateLimit_WritesShareOneBudget(t *testing.T) {
	counter := newMemoryCounter()
	router := rateLimitedRouter(counter, 2)

	w := send(router, http.MethodPost, "/posts", "admin")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, send(router, http.MethodPut, "/posts/1", "admin").Code)

	w = send(router, http.MethodDelete, "/posts/1", "admin")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")

	// another caller has its own budget
	assert.Equal(t, http.StatusOK, send(router, http.MethodPost, "/posts", "editor").Code)
}

func TestWriteRateLimit_ReadsAreNotCounted(t *testing.T) {
	counter := newMemoryCounter()
	router := rateLimitedRouter(counter, 1)

	for i := 0; i < 5; i++ {
		w := send(router, http.MethodGet, "/posts", "admin")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
	assert.Empty(t, counter.hits)

	assert.Equal(t, http.StatusOK, send(router, http.MethodPost, "/posts", "admin").Code)
}

func TestWriteRateLimit_AnonymousCallersAreKeyedByIP(t *testing.T) {
	counter := newMemoryCounter()
	router := rateLimitedRouter(counter, 1)

	send(router, http.MethodPost, "/posts", "")

	assert.Len(t, counter.hits, 1)
	for key := range counter.hits {
		assert.Contains(t, key, "posts:writes:")
		assert.NotContains(t, key, "admin")
	}
}

func TestWriteRateLimit_UnreachableRedisLetsWritesThrough(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	router := rateLimitedRouter(NewRedisCounter(client), 1)

	w := send(router, http.MethodPost, "/posts", "admin")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}
