package model

import "time"

// Movie is a movie record. Rows are never removed; deletion flips IsActive.
type Movie struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"type:varchar(20);index"`
	Rating    *float64  `json:"rating" gorm:"type:numeric(4,2);index"`
	Year      int       `json:"year" gorm:"index"`
	GenreID   uint      `json:"genre_id"`
	IsActive  bool      `json:"-" gorm:"index;not null;default:true"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Genre *Genre `json:"-" gorm:"foreignKey:GenreID"`
}

// MovieInput carries the mutable fields of a movie
type MovieInput struct {
	Title   string
	Rating  *float64
	Year    int
	GenreID uint
}

// RatingValue returns the rating or zero when it is unset
func (m *Movie) RatingValue() float64 {
	if m.Rating == nil {
		return 0
	}
	return *m.Rating
}
