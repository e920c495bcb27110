package handler

import (
	"errors"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"movie-service/internal/apperror"
	"movie-service/internal/model"
	"movie-service/internal/store"
	"movie-service/pkg/logger"
	"movie-service/prometheus"
)

const (
	minRating = 0
	maxRating = 10
)

// MovieRequest is the body of create and full update requests
type MovieRequest struct {
	Title   string   `json:"title" validate:"required,max=20"`
	Rating  *float64 `json:"rating"`
	Year    *int     `json:"year" validate:"required"`
	GenreID *uint    `json:"genre_id" validate:"required"`
}

func (r *MovieRequest) input() model.MovieInput {
	return model.MovieInput{
		Title:   r.Title,
		Rating:  r.Rating,
		Year:    *r.Year,
		GenreID: *r.GenreID,
	}
}

// MoviePatchQuery carries the optional fields of a partial update
type MoviePatchQuery struct {
	Title   string  `query:"title" validate:"max=20"`
	Rating  float64 `query:"rating"`
	Year    int     `query:"year"`
	GenreID uint    `query:"genre_id"`
}

// MovieListQuery filters the movie list
type MovieListQuery struct {
	Q     string `query:"q"`
	Limit *int   `query:"limit" validate:"omitempty,gt=0"`
}

// MovieHandler serves the movie endpoints
type MovieHandler struct {
	store        *store.Store
	metrics      *prometheus.Metrics
	defaultLimit int
}

// NewMovieHandler creates a MovieHandler. defaultLimit applies when a list request has no limit.
func NewMovieHandler(s *store.Store, metrics *prometheus.Metrics, defaultLimit int) *MovieHandler {
	if defaultLimit <= 0 {
		defaultLimit = store.DefaultLimit
	}
	return &MovieHandler{store: s, metrics: metrics, defaultLimit: defaultLimit}
}

// CreateMovie handles creating a new movie
func (h *MovieHandler) CreateMovie(c echo.Context) error {
	log := logger.FromEcho(c)

	// Parse and validate the request body
	var req MovieRequest
	if err := bindAndValidate(c, &req); err != nil {
		log.Info("Invalid movie request", zap.Error(err))
		return err
	}
	in := req.input()

	// Check for a movie with the same title and year
	duplicate, err := h.store.HasDuplicate(c.Request().Context(), in.Title, in.Year)
	if err != nil {
		return err
	}
	if duplicate {
		log.Warn("Movie already exists", zap.String("title", in.Title), zap.Int("year", in.Year))
		return apperror.Conflict("Movie already added")
	}
	if err := checkRating(in.Rating); err != nil {
		return err
	}

	// Save to database
	movie, err := h.store.CreateMovie(c.Request().Context(), in)
	if err != nil {
		return err
	}

	h.metrics.RecordMovieOperation("create")
	log.Info("Movie created", zap.Uint("movie_id", movie.ID), zap.String("title", movie.Title))
	return c.JSON(http.StatusCreated, movie)
}

// UpdateMovie handles replacing every field of a movie
func (h *MovieHandler) UpdateMovie(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := movieID(c)
	if err != nil {
		return err
	}

	var req MovieRequest
	if err := bindAndValidate(c, &req); err != nil {
		log.Info("Invalid movie request", zap.Error(err))
		return err
	}

	// Check if movie exists
	if _, err := h.store.GetMovieByID(c.Request().Context(), id); err != nil {
		return missingMovie(err, id)
	}
	if err := checkRating(req.Rating); err != nil {
		return err
	}

	movie, err := h.store.UpdateMovieComplete(c.Request().Context(), id, req.input())
	if err != nil {
		return missingMovie(err, id)
	}

	h.metrics.RecordMovieOperation("update")
	log.Info("Movie updated", zap.Uint("movie_id", id))
	return c.JSON(http.StatusOK, movie)
}

// PatchMovie handles updating the fields supplied as query parameters.
// Zero values are treated as absent.
func (h *MovieHandler) PatchMovie(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := movieID(c)
	if err != nil {
		return err
	}

	// Bind optional fields from the query string
	var q MoviePatchQuery
	err = echo.QueryParamsBinder(c).
		String("title", &q.Title).
		Float64("rating", &q.Rating).
		Int("year", &q.Year).
		Uint("genre_id", &q.GenreID).
		BindError()
	if err != nil {
		return bindingError(err)
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	// Check if movie exists
	if _, err := h.store.GetMovieByID(c.Request().Context(), id); err != nil {
		return missingMovie(err, id)
	}

	// Rating is only checked when it will be written
	in := model.MovieInput{Title: q.Title, Year: q.Year, GenreID: q.GenreID}
	if q.Rating != 0 {
		if err := checkRating(&q.Rating); err != nil {
			return err
		}
		in.Rating = &q.Rating
	}

	movie, err := h.store.UpdateMoviePartial(c.Request().Context(), id, in)
	if err != nil {
		return missingMovie(err, id)
	}

	h.metrics.RecordMovieOperation("patch")
	log.Info("Movie patched", zap.Uint("movie_id", id))
	return c.JSON(http.StatusOK, movie)
}

// DeleteMovie handles soft-deleting a movie and returns its last known state
func (h *MovieHandler) DeleteMovie(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := movieID(c)
	if err != nil {
		return err
	}

	movie, err := h.store.DeleteMovie(c.Request().Context(), id)
	if err != nil {
		return missingMovie(err, id)
	}

	h.metrics.RecordMovieOperation("delete")
	log.Info("Movie deleted", zap.Uint("movie_id", id))
	return c.JSON(http.StatusOK, movie)
}

// GetMovie handles retrieving a single movie by ID
func (h *MovieHandler) GetMovie(c echo.Context) error {
	id, err := movieID(c)
	if err != nil {
		return err
	}

	movie, err := h.store.GetMovieByID(c.Request().Context(), id)
	if err != nil {
		return missingMovie(err, id)
	}

	h.metrics.RecordMovieOperation("get")
	return c.JSON(http.StatusOK, movie)
}

// ListMovies handles listing movies, optionally filtered by a title query.
// An empty unfiltered list is 204; an empty filtered list is 404.
func (h *MovieHandler) ListMovies(c echo.Context) error {
	log := logger.FromEcho(c)

	var q MovieListQuery
	binder := echo.QueryParamsBinder(c).String("q", &q.Q)
	if c.QueryParam("limit") != "" {
		var limit int
		binder = binder.Int("limit", &limit)
		q.Limit = &limit
	}
	if err := binder.BindError(); err != nil {
		return bindingError(err)
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	limit := h.defaultLimit
	if q.Limit != nil {
		limit = *q.Limit
	}

	// Filtered search
	if q.Q != "" {
		movies, err := h.store.GetMoviesByQuery(c.Request().Context(), q.Q, limit)
		if err != nil {
			return err
		}
		h.metrics.RecordMovieOperation("query")
		if len(movies) == 0 {
			log.Info("No movie matched query", zap.String("q", q.Q))
			return apperror.NotFound("No movie was found")
		}
		return c.JSON(http.StatusOK, movies)
	}

	// Plain listing
	movies, err := h.store.GetMovies(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	h.metrics.RecordMovieOperation("list")
	if len(movies) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, movies)
}

func checkRating(rating *float64) error {
	if rating == nil {
		return nil
	}
	// NaN passes both comparisons
	if math.IsNaN(*rating) || *rating < minRating || *rating > maxRating {
		return apperror.BadRequest("Rating must be between 0 and 10")
	}
	return nil
}

func movieID(c echo.Context) (uint, error) {
	var id uint
	if err := echo.PathParamsBinder(c).MustUint("id", &id).BindError(); err != nil {
		return 0, bindingError(err)
	}
	return id, nil
}

func missingMovie(err error, id uint) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.NotFoundf("Missing movie with id %d", id)
	}
	return err
}
