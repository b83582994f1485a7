package routes

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shopfront-backend/internal/orders"
	"github.com/angelmondragon/shopfront-backend/pkg/config"
)

// memoryCache is an in-process stand-in for the redis client. Windows never
// expire.
type memoryCache struct {
	mu       sync.Mutex
	values   map[string]string
	counters map[string]int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}, counters: map[string]int64{}}
}

func (m *memoryCache) Ping(context.Context) error { return nil }

func (m *memoryCache) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[scope]++
	count := m.counters[scope]
	return count <= limit, count, nil
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *memoryCache) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryCache) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func withCache(cache Cache) func(*config.Config, *Dependencies) {
	return func(_ *config.Config, deps *Dependencies) {
		deps.Redis = cache
	}
}

func TestReadyReportsCache(t *testing.T) {
	srv := newTestServer(t, withCache(newMemoryCache()))

	rec := srv.do(http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis"`)
}

func TestCreateOrderIsIdempotent(t *testing.T) {
	srv := newTestServer(t, withCache(newMemoryCache()))
	_, token := srv.signup("ada")
	widget := srv.createProduct("Widget", "19.99")

	body := map[string]any{
		"shipping_address": "1 Main St",
		"payment_method":   "card",
		"product_ids":      []string{widget.ID.String()},
	}

	rec := srv.do(http.MethodPost, "/api/v1/orders", token, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "a key is required once the cache is wired")

	headers := map[string]string{"Idempotency-Key": "order-1"}
	first := srv.doWithHeaders(http.MethodPost, "/api/v1/orders", token, headers, body)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	assert.Empty(t, first.Header().Get("Idempotent-Replayed"))

	replay := srv.doWithHeaders(http.MethodPost, "/api/v1/orders", token, headers, body)
	require.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())

	body["shipping_address"] = "2 Side St"
	rec = srv.doWithHeaders(http.MethodPost, "/api/v1/orders", token, headers, body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(http.MethodGet, "/api/v1/orders", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []orders.OrderDTO
	srv.data(rec, &list)
	assert.Len(t, list, 1)
}

func TestTokenEndpointIsThrottled(t *testing.T) {
	srv := newTestServer(t, withCache(newMemoryCache()), func(cfg *config.Config, _ *Dependencies) {
		cfg.AuthRateLimit = config.AuthRateLimitConfig{LoginWindow: time.Minute, LoginUsernameLimit: 3}
	})
	srv.signup("ada")

	creds := map[string]string{"username": "ada", "password": "wrong password"}
	for i := 0; i < 2; i++ {
		rec := srv.do(http.MethodPost, "/api/v1/auth/token", "", creds)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i+1)
	}

	rec := srv.do(http.MethodPost, "/api/v1/auth/token", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = srv.do(http.MethodPost, "/api/v1/auth/token", "", map[string]string{"username": "grace", "password": "whatever"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "other usernames keep their own budget")
}
