package model

import "time"

// Genre groups movies. Genres are seeded once and never deleted.
type Genre struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(20);index"`
	IsActive  bool      `json:"-" gorm:"index;not null;default:true"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Movies []Movie `json:"-" gorm:"foreignKey:GenreID"`
}

// DefaultGenres is inserted when the genre table is empty
var DefaultGenres = []string{
	"Action",
	"Adventure",
	"Animation",
	"Comedy",
	"Crime",
	"Documentary",
	"Drama",
	"Family",
	"Fantasy",
	"History",
	"Horror",
	"Music",
	"Mystery",
	"Romance",
	"Science Fiction",
	"TV Movie",
	"Thriller",
	"War",
	"Western",
}
