package middleware

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"movie-service/internal/apperror"
	"movie-service/pkg/logger"
	"movie-service/pkg/ratelimit"
	"movie-service/prometheus"
)

// RateLimitMiddleware throttles requests per client IP
func RateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, metrics *prometheus.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// One bucket per client address
			ip := c.RealIP()
			if !limiter.Allow(ip) {
				logger.FromEcho(c).Warn("Rate limit exceeded", zap.String("ip", ip))
				metrics.RecordRateLimited()
				return apperror.ErrTooManyRequests
			}
			return next(c)
		}
	}
}
