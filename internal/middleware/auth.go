package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"movie-service/internal/apperror"
	"movie-service/internal/auth"
	"movie-service/pkg/logger"
	"movie-service/prometheus"
)

const userKey = "user"

// AuthMiddleware validates the bearer token and requires an active user.
// The resolved user is available through CurrentUser.
func AuthMiddleware(gate *auth.Gate, metrics *prometheus.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			// Get token from Authorization header
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Info("Missing Authorization header")
				metrics.RecordAuthError("missing_token")
				return apperror.Unauthorized(auth.MsgNotAuthenticated)
			}

			// Check if the header has the Bearer prefix
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				log.Info("Invalid Authorization header format")
				metrics.RecordAuthError("invalid_auth_format")
				return apperror.Unauthorized(auth.MsgNotAuthenticated)
			}

			// Validate token and resolve the user it names
			user, err := gate.VerifyToken(parts[1])
			if err != nil {
				log.Info("Invalid bearer token", zap.Error(err))
				metrics.RecordAuthError("invalid_token")
				return err
			}

			if err := gate.RequireActiveUser(user); err != nil {
				log.Info("Inactive user", zap.String("username", user.Username))
				metrics.RecordAuthError("inactive_user")
				return err
			}

			// Store user in context for handlers
			c.Set(userKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user resolved by AuthMiddleware, or nil
func CurrentUser(c echo.Context) *auth.User {
	user, _ := c.Get(userKey).(*auth.User)
	return user
}
