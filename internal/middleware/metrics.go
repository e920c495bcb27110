package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"movie-service/prometheus"
)

// MetricsMiddleware records count and duration of every request by route
func MetricsMiddleware(metrics *prometheus.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Process request
			err := next(c)

			// Label by route template so ids do not explode cardinality

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			metrics.ObserveHTTPRequest(c.Request().Method, path, c.Response().Status, time.Since(start))

			return err
		}
	}
}
