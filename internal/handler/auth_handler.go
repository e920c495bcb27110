package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"movie-service/internal/auth"
	"movie-service/internal/middleware"
	"movie-service/pkg/logger"
	"movie-service/prometheus"
)

// TokenRequest is the OAuth2 password grant form
type TokenRequest struct {
	GrantType string `form:"grant_type" validate:"omitempty,oneof=password"`
	Username  string `form:"username" validate:"required"`
	Password  string `form:"password" validate:"required"`
	Scope     string `form:"scope"`
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthHandler serves login and the current user
type AuthHandler struct {
	gate    *auth.Gate
	metrics *prometheus.Metrics
}

func NewAuthHandler(gate *auth.Gate, metrics *prometheus.Metrics) *AuthHandler {
	return &AuthHandler{gate: gate, metrics: metrics}
}

// Token exchanges a username and password for a bearer token
func (h *AuthHandler) Token(c echo.Context) error {
	log := logger.FromEcho(c)
	h.metrics.RecordAuthAttempt()

	// Parse the password grant form
	var req TokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		log.Info("Invalid token request", zap.Error(err))
		h.metrics.RecordAuthError("invalid_request")
		return err
	}

	// Verify credentials
	user, err := h.gate.Authenticate(req.Username, req.Password)
	if err != nil {
		log.Warn("Login failed", zap.String("username", req.Username))
		h.metrics.RecordAuthError("invalid_credentials")
		return err
	}

	// Generate access token
	token, err := h.gate.IssueToken(user, h.gate.TokenTTL())
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		h.metrics.RecordAuthError("token_generation_failed")
		return err
	}

	h.metrics.RecordAuthSuccess()
	log.Info("User logged in", zap.String("username", user.Username))
	return c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me returns the user behind the bearer token
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.CurrentUser(c))
}
