package middleware

import (
	"context"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/metrics"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Limiter interface {
	Allow(ctx context.Context, scope, identity string) (bool, error)
}

// RateLimit counts requests per caller within scope. It must run after auth;
// anonymous requests fall back to the client IP. Limiter errors let the
// request through.
func RateLimit(limiter Limiter, scope string, m *metrics.TicketMetrics, onError func(*gin.Context, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		identity := CallerID(c)
		if identity == "" {
			identity = c.ClientIP()
		}

		allowed, err := limiter.Allow(c.Request.Context(), scope, identity)
		if err != nil {
			logrus.WithError(err).WithField("scope", scope).Warn("rate limiter unavailable")
			c.Next()
			return
		}
		if !allowed {
			if m != nil {
				m.RecordRateLimited(scope)
			}
			onError(c, domain.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}
