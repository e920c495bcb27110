package store

import (
	"context"
	"time"

	"movie-service/internal/model"
)

// PopulateGenres inserts the default genres when the table is empty and
// returns how many rows were inserted.
func (s *Store) PopulateGenres(ctx context.Context) (int, error) {
	defer s.tracker.TrackDBOperation("populate_genres")(time.Now())

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&model.Genre{}).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	if count > 0 {
		return 0, nil
	}

	genres := make([]model.Genre, 0, len(model.DefaultGenres))
	for _, name := range model.DefaultGenres {
		genres = append(genres, model.Genre{Name: name, IsActive: true})
	}
	if err := db.Create(&genres).Error; err != nil {
		return 0, translate(err)
	}
	return len(genres), nil
}

// GetGenres returns every active genre in id order
func (s *Store) GetGenres(ctx context.Context) ([]model.Genre, error) {
	defer s.tracker.TrackDBOperation("list_genres")(time.Now())

	var genres []model.Genre
	if err := active(s.db.WithContext(ctx)).Order("id ASC").Find(&genres).Error; err != nil {
		return nil, translate(err)
	}
	return genres, nil
}
