package middleware

import (
	"context"
	"net/http"
	"time"

	"booking-service/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit caps requests per caller and action in a fixed window.
// A failing limiter lets the request through.
func RateLimit(l Limiter, action string, limit int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || limit <= 0 {
			c.Next()
			return
		}
		who := c.ClientIP()
		if id := UserID(c); id != uuid.Nil {
			who = id.String()
		}
		ok, err := l.Allow(c.Request.Context(), action+":"+who, limit, window)
		if err != nil {
			log.Warn("rate limiter unavailable", zap.String("action", action), zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewRateLimitedError("too many requests"))
			return
		}
		c.Next()
	}
}
