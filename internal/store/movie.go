package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"movie-service/internal/model"
	"movie-service/pkg/config"
)

// CreateMovie inserts an active movie and returns it with its assigned id
func (s *Store) CreateMovie(ctx context.Context, in model.MovieInput) (*model.Movie, error) {
	defer s.tracker.TrackDBOperation("create_movie")(time.Now())

	movie := &model.Movie{
		Title:    in.Title,
		Rating:   in.Rating,
		Year:     in.Year,
		GenreID:  in.GenreID,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(movie).Error; err != nil {
		return nil, translate(err)
	}
	return movie, nil
}

// GetMovieByID returns the active movie with id
func (s *Store) GetMovieByID(ctx context.Context, id uint) (*model.Movie, error) {
	defer s.tracker.TrackDBOperation("get_movie")(time.Now())

	return findActive(s.db.WithContext(ctx), id)
}

// GetMovies returns up to limit active movies in id order
func (s *Store) GetMovies(ctx context.Context, limit int) ([]model.Movie, error) {
	defer s.tracker.TrackDBOperation("list_movies")(time.Now())

	var movies []model.Movie
	err := active(s.db.WithContext(ctx)).
		Order("id ASC").
		Limit(normalizeLimit(limit)).
		Find(&movies).Error
	if err != nil {
		return nil, translate(err)
	}
	return movies, nil
}

// GetMoviesByQuery returns up to limit active movies whose title contains q, ignoring case.
// LIKE wildcards in q are not escaped.
func (s *Store) GetMoviesByQuery(ctx context.Context, q string, limit int) ([]model.Movie, error) {
	defer s.tracker.TrackDBOperation("search_movies")(time.Now())

	var movies []model.Movie
	err := active(s.db.WithContext(ctx)).
		Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%").
		Order("id ASC").
		Limit(normalizeLimit(limit)).
		Find(&movies).Error
	if err != nil {
		return nil, translate(err)
	}
	return movies, nil
}

// FindTitleMatches returns the active movies whose title matches title under
// the configured policy: case-insensitive substring or case-insensitive equality.
func (s *Store) FindTitleMatches(ctx context.Context, title string) ([]model.Movie, error) {
	defer s.tracker.TrackDBOperation("find_title_matches")(time.Now())

	query := active(s.db.WithContext(ctx))
	if s.titleMatch == config.TitleMatchExact {
		query = query.Where("LOWER(title) = ?", strings.ToLower(title))
	} else {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(title)+"%")
	}

	var movies []model.Movie
	if err := query.Order("id ASC").Find(&movies).Error; err != nil {
		return nil, translate(err)
	}
	return movies, nil
}

// HasDuplicate reports whether an active movie matching title was released in year
func (s *Store) HasDuplicate(ctx context.Context, title string, year int) (bool, error) {
	matches, err := s.FindTitleMatches(ctx, title)
	if err != nil {
		return false, err
	}
	for _, m := range matches {
		if m.Year == year {
			return true, nil
		}
	}
	return false, nil
}

// UpdateMovieComplete overwrites all mutable fields of an active movie
func (s *Store) UpdateMovieComplete(ctx context.Context, id uint, in model.MovieInput) (*model.Movie, error) {
	defer s.tracker.TrackDBOperation("update_movie")(time.Now())

	var movie *model.Movie
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		movie, err = findActive(tx, id)
		if err != nil {
			return err
		}

		movie.Title = in.Title
		movie.Rating = in.Rating
		movie.Year = in.Year
		movie.GenreID = in.GenreID
		return tx.Model(movie).Select("Title", "Rating", "Year", "GenreID").Updates(movie).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return movie, nil
}

// UpdateMoviePartial overwrites only the fields of in that are set. Zero
// values count as unset, so a rating of 0 or a year of 0 cannot be written here.
func (s *Store) UpdateMoviePartial(ctx context.Context, id uint, in model.MovieInput) (*model.Movie, error) {
	defer s.tracker.TrackDBOperation("patch_movie")(time.Now())

	var movie *model.Movie
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		movie, err = findActive(tx, id)
		if err != nil {
			return err
		}

		var fields []any
		if in.Title != "" {
			movie.Title = in.Title
			fields = append(fields, "Title")
		}
		if in.Rating != nil && *in.Rating != 0 {
			movie.Rating = in.Rating
			fields = append(fields, "Rating")
		}
		if in.Year != 0 {
			movie.Year = in.Year
			fields = append(fields, "Year")
		}
		if in.GenreID != 0 {
			movie.GenreID = in.GenreID
			fields = append(fields, "GenreID")
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Model(movie).Select(fields[0], fields[1:]...).Updates(movie).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return movie, nil
}

// DeleteMovie marks an active movie inactive and returns its final state
func (s *Store) DeleteMovie(ctx context.Context, id uint) (*model.Movie, error) {
	defer s.tracker.TrackDBOperation("delete_movie")(time.Now())

	var movie *model.Movie
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		movie, err = findActive(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(movie).Update("is_active", false).Error; err != nil {
			return err
		}
		movie.IsActive = false
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return movie, nil
}

func findActive(db *gorm.DB, id uint) (*model.Movie, error) {
	var movie model.Movie
	if err := active(db).First(&movie, id).Error; err != nil {
		return nil, translate(err)
	}
	return &movie, nil
}
