package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/revenue/backend/internal/domain/shared"
	"github.com/revenue/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// MaxIdempotencyKeyLength bounds the Idempotency-Key header
const MaxIdempotencyKeyLength = 128

// IdempotencyConfig configures the Idempotency middleware
type IdempotencyConfig struct {
	Store  shared.IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// Idempotency claims the request's Idempotency-Key before the handler runs.
// A key already claimed by the same user on the same route is rejected with 409.
// Failed requests (status >= 400) release their claim so the caller can retry.
// Requests without the header pass through unchanged.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.Store == nil {
		return passthrough
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			abortWithCode(c, dto.ErrCodeBadRequest, "Idempotency-Key exceeds maximum length")
			return
		}

		storeKey := idempotencyStoreKey(c, key)
		claimed, err := cfg.Store.MarkProcessed(c.Request.Context(), storeKey, cfg.TTL)
		if err != nil {
			log.Error("Idempotency store unavailable",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			abortWithCode(c, dto.ErrCodeUnavailable, "Idempotency check unavailable, retry later")
			return
		}
		if !claimed {
			abortWithCode(c, dto.ErrCodeDuplicateRequest, "A request with this Idempotency-Key was already processed")
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			// The request context may already be cancelled
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := cfg.Store.Release(ctx, storeKey); err != nil {
				log.Warn("Failed to release idempotency key",
					zap.String("request_id", GetRequestID(c)),
					zap.Error(err),
				)
			}
		}
	}
}

func idempotencyStoreKey(c *gin.Context, key string) string {
	user := c.GetHeader(HeaderUserID)
	if user == "" {
		user = "anonymous"
	}
	return strings.Join([]string{user, c.Request.Method, routePattern(c), key}, ":")
}

func abortWithCode(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
