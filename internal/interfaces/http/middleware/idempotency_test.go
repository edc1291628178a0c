package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revenue/backend/internal/infrastructure/cache"
	"github.com/revenue/backend/internal/interfaces/http/dto"
)

type failingStore struct{}

func (failingStore) MarkProcessed(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}
func (failingStore) IsProcessed(context.Context, string) (bool, error) { return false, nil }
func (failingStore) Release(context.Context, string) error             { return nil }
func (failingStore) Close() error                                      { return nil }

const testUserID = "3f0e2a4c-8b1d-4e6f-9a2b-5c7d8e9f0a1b"

func newIdempotentRouter(t *testing.T, status *int32) (*gin.Engine, *int32) {
	t.Helper()

	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	var calls int32
	router := gin.New()
	router.Use(RequestID())
	router.POST("/api/v1/bills/:id/adjustments", Idempotency(IdempotencyConfig{Store: store, TTL: time.Hour}), func(c *gin.Context) {
		atomic.AddInt32(&calls, 1)
		c.Status(int(atomic.LoadInt32(status)))
	})
	return router, &calls
}

func postWithKey(router *gin.Engine, path, user, key string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
	if user != "" {
		req.Header.Set(HeaderUserID, user)
	}
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestIdempotency_RejectsReplay(t *testing.T) {
	status := int32(http.StatusCreated)
	router, calls := newIdempotentRouter(t, &status)

	first := postWithKey(router, "/api/v1/bills/b1/adjustments", testUserID, "retry-1")
	assert.Equal(t, http.StatusCreated, first.Code)

	second := postWithKey(router, "/api/v1/bills/b1/adjustments", testUserID, "retry-1")
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, dto.ErrCodeDuplicateRequest, errorCode(t, second))
	assert.NotEmpty(t, second.Header().Get(HeaderRequestID))

	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestIdempotency_KeysAreScopedPerUser(t *testing.T) {
	status := int32(http.StatusCreated)
	router, calls := newIdempotentRouter(t, &status)

	assert.Equal(t, http.StatusCreated, postWithKey(router, "/api/v1/bills/b1/adjustments", testUserID, "k").Code)
	assert.Equal(t, http.StatusCreated, postWithKey(router, "/api/v1/bills/b1/adjustments", "9d8c7b6a-5f4e-4d3c-8b2a-1f0e9d8c7b6a", "k").Code)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestIdempotency_ReleasesKeyOnFailure(t *testing.T) {
	status := int32(http.StatusNotFound)
	router, calls := newIdempotentRouter(t, &status)

	assert.Equal(t, http.StatusNotFound, postWithKey(router, "/api/v1/bills/b1/adjustments", testUserID, "k").Code)

	atomic.StoreInt32(&status, http.StatusCreated)
	assert.Equal(t, http.StatusCreated, postWithKey(router, "/api/v1/bills/b1/adjustments", testUserID, "k").Code)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestIdempotency_WithoutKeyPassesThrough(t *testing.T) {
	status := int32(http.StatusCreated)
	router, calls := newIdempotentRouter(t, &status)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusCreated, postWithKey(router, "/api/v1/bills/b1/adjustments", testUserID, "").Code)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestIdempotency_RejectsOversizedKey(t *testing.T) {
	status := int32(http.StatusCreated)
	router, calls := newIdempotentRouter(t, &status)

	w := postWithKey(router, "/api/v1/bills/b1/adjustments", testUserID, strings.Repeat("k", MaxIdempotencyKeyLength+1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, errorCode(t, w))
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestIdempotency_FailsClosedWhenStoreErrors(t *testing.T) {
	var calls int32
	router := gin.New()
	router.POST("/bulk", Idempotency(IdempotencyConfig{Store: failingStore{}, TTL: time.Hour}), func(c *gin.Context) {
		atomic.AddInt32(&calls, 1)
		c.Status(http.StatusOK)
	})

	w := postWithKey(router, "/bulk", testUserID, "k")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, dto.ErrCodeUnavailable, errorCode(t, w))
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestIdempotency_NilStore(t *testing.T) {
	router := gin.New()
	router.POST("/bulk", Idempotency(IdempotencyConfig{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, postWithKey(router, "/bulk", testUserID, "k").Code)
	assert.Equal(t, http.StatusOK, postWithKey(router, "/bulk", testUserID, "k").Code)
}
