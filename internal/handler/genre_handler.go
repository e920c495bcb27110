package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"movie-service/internal/store"
	"movie-service/pkg/logger"
	"movie-service/prometheus"
)

// GenreHandler serves the genre endpoints
type GenreHandler struct {
	store   *store.Store
	metrics *prometheus.Metrics
}

func NewGenreHandler(s *store.Store, metrics *prometheus.Metrics) *GenreHandler {
	return &GenreHandler{store: s, metrics: metrics}
}

// ListGenres returns every active genre, or 204 when there are none
func (h *GenreHandler) ListGenres(c echo.Context) error {
	genres, err := h.store.GetGenres(c.Request().Context())
	if err != nil {
		return err
	}

	// Keep the gauge in step with what clients see
	h.metrics.SetGenres(len(genres))
	logger.FromEcho(c).Debug("Genres retrieved", zap.Int("count", len(genres)))
	if len(genres) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, genres)
}
