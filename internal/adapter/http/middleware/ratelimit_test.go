package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-ledger/internal/adapter/http/middleware"
	redisStore "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/core/ports/mocks"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func setupRateLimitRouter(store ports.RateLimitStore, accountID *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	if accountID != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.CtxAccountID, *accountID)
			c.Next()
		})
	}

	rule := middleware.RateLimitRule{Limit: 3, Window: time.Minute}
	r.GET("/test", middleware.RateLimiter(store, "test", rule, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return r
}

func newRedisStore(t *testing.T) *redisStore.RateLimitStore {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redisStore.NewRateLimitStore(client)
}

func doGet(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), "GET", "/test", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	router := setupRateLimitRouter(newRedisStore(t), nil)

	for i := 0; i < 3; i++ {
		w := doGet(router, "")
		assert.Equal(t, 200, w.Code, "request %d should succeed", i+1)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	router := setupRateLimitRouter(newRedisStore(t), nil)

	// Use up the limit
	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, doGet(router, "").Code)
	}

	// 4th request should be blocked
	w := doGet(router, "")
	assert.Equal(t, 429, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_001")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiter_KeysByClientIP(t *testing.T) {
	router := setupRateLimitRouter(newRedisStore(t), nil)

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, doGet(router, "10.0.0.1:1234").Code)
	}
	assert.Equal(t, 429, doGet(router, "10.0.0.1:1234").Code)

	// Another client has its own counter
	assert.Equal(t, 200, doGet(router, "10.0.0.2:1234").Code)
}

func TestRateLimiter_KeysByAccount(t *testing.T) {
	store := newRedisStore(t)
	alice, bob := uuid.New(), uuid.New()
	aliceRouter := setupRateLimitRouter(store, &alice)
	bobRouter := setupRateLimitRouter(store, &bob)

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, doGet(aliceRouter, "").Code)
	}
	assert.Equal(t, 429, doGet(aliceRouter, "").Code)

	// Same IP, different account
	assert.Equal(t, 200, doGet(bobRouter, "").Code)
}

func TestRateLimiter_DegradesOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockRateLimitStore(ctrl)
	store.EXPECT().Allow(gomock.Any(), gomock.Any(), int64(3), time.Minute).
		Return(nil, errors.New("connection refused")).Times(5)

	router := setupRateLimitRouter(store, nil)
	for i := 0; i < 5; i++ {
		w := doGet(router, "")
		assert.Equal(t, 200, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestDefaultRateLimitRules(t *testing.T) {
	rules := middleware.DefaultRateLimitRules()
	assert.Equal(t, middleware.RateLimitRule{Limit: 5, Window: time.Hour}, rules["auth_register"])
	assert.Equal(t, int64(10), rules["auth_login"].Limit)
	assert.Equal(t, int64(10), rules["auth_verify"].Limit)
	assert.Equal(t, int64(20), rules["wallet_send"].Limit)
	assert.Equal(t, int64(3), rules["decrypt_otp"].Limit)
	assert.Equal(t, int64(10), rules["decrypt"].Limit)
	assert.Equal(t, int64(60), rules["read"].Limit)
	for group, rule := range rules {
		assert.Positive(t, rule.Window, group)
	}
}
