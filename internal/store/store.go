// Package store persists movies and genres with soft-delete semantics.
//
// Rows are never removed. Deleting a movie flips its is_active flag and every
// read filters on is_active = true.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"movie-service/internal/apperror"
	"movie-service/pkg/config"
)

// DefaultLimit caps list queries when the caller passes no positive limit
const DefaultLimit = 100

// Tracker observes database operation latency
type Tracker interface {
	TrackDBOperation(operationType string) func(startTime time.Time)
}

type noopTracker struct{}

func (noopTracker) TrackDBOperation(string) func(time.Time) { return func(time.Time) {} }

// Store is the entity store for movies and genres
type Store struct {
	db         *gorm.DB
	tracker    Tracker
	titleMatch string
}

// Option configures a Store
type Option func(*Store)

// WithTracker records operation latency on t
func WithTracker(t Tracker) Option {
	return func(s *Store) {
		if t != nil {
			s.tracker = t
		}
	}
}

// WithTitleMatch selects how duplicate titles are detected: substring or exact
func WithTitleMatch(mode string) Option {
	return func(s *Store) {
		if mode == config.TitleMatchExact || mode == config.TitleMatchSubstring {
			s.titleMatch = mode
		}
	}
}

// New creates a Store over db
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:         db,
		tracker:    noopTracker{},
		titleMatch: config.TitleMatchSubstring,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	defer s.tracker.TrackDBOperation("ping")(time.Now())

	sqlDB, err := s.db.DB()
	if err != nil {
		return apperror.Internal(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.ErrNotFound
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Internal(err)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

func active(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}
