// Package server assembles the echo instance from explicit dependencies.
package server

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"movie-service/internal/apperror"
	"movie-service/internal/auth"
	"movie-service/internal/handler"
	"movie-service/internal/middleware"
	"movie-service/internal/store"
	"movie-service/internal/validation"
	"movie-service/pkg/config"
	"movie-service/pkg/logger"
	"movie-service/pkg/ratelimit"
	"movie-service/prometheus"
)

// limiterIdle is how long a client's token bucket survives without requests
const limiterIdle = 10 * time.Minute

// Deps are the collaborators the HTTP layer needs
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   *store.Store
	Gate    *auth.Gate
	Metrics *prometheus.Metrics
}

// Server wraps the echo instance and the resources it owns
type Server struct {
	Echo    *echo.Echo
	limiter *ratelimit.KeyedRateLimiter
}

// New builds the echo instance with middleware and routes
func New(deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperror.Handler()
	e.Validator = validation.New()

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.MetricsMiddleware(deps.Metrics))
	e.Use(logger.Middleware(deps.Logger))

	limiter := ratelimit.New(deps.Config.Auth.RateLimitRPS, deps.Config.Auth.RateLimitBurst, limiterIdle)

	movies := handler.NewMovieHandler(deps.Store, deps.Metrics, deps.Config.Movies.DefaultLimit)
	genres := handler.NewGenreHandler(deps.Store, deps.Metrics)
	authH := handler.NewAuthHandler(deps.Gate, deps.Metrics)
	health := handler.NewHealthHandler(deps.Store)

	requireUser := middleware.AuthMiddleware(deps.Gate, deps.Metrics)

	e.GET("/health", health.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))

	api := e.Group("/api/v1")

	api.POST("/movies/", movies.CreateMovie)
	api.POST("/movies", movies.CreateMovie)
	api.GET("/movies/", movies.ListMovies)
	api.GET("/movies", movies.ListMovies)
	api.GET("/movies/:id", movies.GetMovie)
	api.PUT("/movies/:id", movies.UpdateMovie)
	api.PATCH("/movies/:id", movies.PatchMovie)
	api.DELETE("/movies/:id", movies.DeleteMovie, requireUser)

	api.GET("/genres/", genres.ListGenres)
	api.GET("/genres", genres.ListGenres)

	api.POST("/token", authH.Token, middleware.RateLimitMiddleware(limiter, deps.Metrics))
	api.GET("/users/me", authH.Me, requireUser)

	return &Server{Echo: e, limiter: limiter}
}

// Start listens on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	return s.Echo.Start(addr)
}

// Close stops background work owned by the server
func (s *Server) Close() {
	s.limiter.Stop()
}
