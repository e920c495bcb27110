package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"movie-service/internal/apperror"
	"movie-service/internal/auth"
	"movie-service/pkg/config"
	"movie-service/pkg/ratelimit"
	"movie-service/prometheus"
)

func testConfig(t *testing.T, active bool) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	return &config.Config{
		JWT: config.JWTConfig{SigningKey: "middleware-test-key", ExpirationMinutes: 5},
		Auth: config.AuthConfig{
			Username:     "admin",
			Email:        "admin@example.com",
			PasswordHash: string(hash),
			Active:       active,
		},
		Metrics: config.MetricsConfig{Prefix: "test"},
	}
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apperror.Handler()
	return e
}

func TestRequestID(t *testing.T) {
	e := newEcho()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(RequestIDKey).(string))
	})

	t.Run("generates when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		id := rec.Header().Get(RequestIDKey)
		assert.Len(t, id, 36)
		assert.Equal(t, id, rec.Body.String())
	})

	t.Run("echoes caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDKey, "abc-123")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDKey))
	})
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig(t, true)
	gate := auth.NewGate(cfg, zap.NewNop())
	metrics := prometheus.NewMetrics(cfg)

	user, err := gate.Authenticate("admin", "secret")
	require.NoError(t, err)
	token, err := gate.IssueToken(user, time.Minute)
	require.NoError(t, err)

	e := newEcho()
	e.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, CurrentUser(c).Username)
	}, AuthMiddleware(gate, metrics))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "no header", wantStatus: http.StatusUnauthorized, wantBody: `{"detail":"Not authenticated"}`},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantBody: `{"detail":"Not authenticated"}`},
		{name: "missing token", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantBody: `{"detail":"Not authenticated"}`},
		{name: "bad token", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantBody: `{"detail":"Could not validate credentials"}`},
		{name: "valid token", header: "Bearer " + token, wantStatus: http.StatusOK, wantBody: "admin"},
		{name: "scheme is case-insensitive", header: "bearer " + token, wantStatus: http.StatusOK, wantBody: "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
				return
			}
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		})
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthErrorsCounter.WithLabelValues("missing_token")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.AuthErrorsCounter.WithLabelValues("invalid_auth_format")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthErrorsCounter.WithLabelValues("invalid_token")))
}

func TestAuthMiddleware_InactiveUser(t *testing.T) {
	cfg := testConfig(t, false)
	gate := auth.NewGate(cfg, zap.NewNop())

	user, err := gate.Authenticate("admin", "secret")
	require.NoError(t, err)
	token, err := gate.IssueToken(user, time.Minute)
	require.NoError(t, err)

	e := newEcho()
	e.GET("/me", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, AuthMiddleware(gate, prometheus.NewMetrics(cfg)))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Inactive user"}`, rec.Body.String())
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := testConfig(t, true)
	metrics := prometheus.NewMetrics(cfg)
	limiter := ratelimit.New(1, 2, 0)
	defer limiter.Stop()

	e := newEcho()
	e.POST("/token", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimitMiddleware(limiter, metrics))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/token", nil)
		req.RemoteAddr = "192.0.2.10:4000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.JSONEq(t, `{"detail":"Too many requests"}`, rec.Body.String())
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RateLimitedCounter))

	other := httptest.NewRequest(http.MethodPost, "/token", nil)
	other.RemoteAddr = "192.0.2.11:4000"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsMiddleware(t *testing.T) {
	cfg := testConfig(t, true)
	metrics := prometheus.NewMetrics(cfg)

	e := newEcho()
	e.Use(MetricsMiddleware(metrics))
	e.GET("/movies/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movies/7", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HttpRequestsTotal.WithLabelValues(http.MethodGet, "/movies/:id", "200")))
}
