package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/retailsales/internal/observability/context"
	"github.com/smallbiznis/retailsales/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	headerClientID       = "X-Client-Id"
	rateLimitReasonQuery = "query-rate"
)

// QueryRateLimit throttles sales queries per client. A limiter failure lets
// the request through.
func (s *Server) QueryRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil || !s.limiter.Enabled() {
			c.Next()
			return
		}

		clientID := clientIdentity(c)
		ctx := obscontext.WithClientID(c.Request.Context(), clientID)
		c.Request = c.Request.WithContext(ctx)
		endpoint := normalizeRateLimitEndpoint(c)

		res, err := s.limiter.Allow(ctx, clientID)
		if err != nil {
			logger.FromContext(ctx).Warn("query rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			logger.FromContext(ctx).Warn("query rate limit exceeded",
				zap.String("reason", rateLimitReasonQuery),
				zap.String("endpoint", endpoint),
			)
			s.obsMetrics.RecordRateLimitDenied(ctx, endpoint, rateLimitReasonQuery)

			retry := int(res.RetryAfter.Round(time.Second) / time.Second)
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			c.Header("X-RateLimit-Remaining", "0")
			AbortWithError(c, ErrRateLimited)
			return
		}

		s.obsMetrics.RecordRateLimitAllowed(ctx, endpoint)
		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Next()
	}
}

func clientIdentity(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(headerClientID)); id != "" {
		return id
	}
	return c.ClientIP()
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
