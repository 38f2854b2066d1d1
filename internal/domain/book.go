package domain

import (
	"time"
)

// Genre is the closed set of catalog genres.
type Genre string

const (
	GenreClassic    Genre = "Classic"
	GenreFiction    Genre = "Fiction"
	GenreDrama      Genre = "Drama"
	GenreMystery    Genre = "Mystery"
	GenreFantasy    Genre = "Fantasy"
	GenreNonFiction Genre = "Non-Fiction"
	GenreSciFi      Genre = "Sci-Fi"
	GenreBiography  Genre = "Biography"
	GenreRomance    Genre = "Romance"
	GenreThriller   Genre = "Thriller"
)

// Genres lists every valid genre, in display order.
var Genres = []Genre{
	GenreClassic,
	GenreFiction,
	GenreDrama,
	GenreMystery,
	GenreFantasy,
	GenreNonFiction,
	GenreSciFi,
	GenreBiography,
	GenreRomance,
	GenreThriller,
}

// ValidGenre reports whether g is one of the known genres.
func ValidGenre(g Genre) bool {
	for _, known := range Genres {
		if g == known {
			return true
		}
	}
	return false
}

// Book is a catalog entry. AverageRating and NumReviews are derived from the
// book's reviews and are written only by the review submission recompute step.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Rating        float64   `json:"rating"` // editorial rating, set at creation
	AverageRating float64   `json:"average_rating"`
	NumReviews    int       `json:"num_reviews"`
	CoverURL      string    `json:"cover_url"`
	Description   string    `json:"description"`
	Tags          []string  `json:"tags"`
	Genre         Genre     `json:"genre"`
	IsFeatured    bool      `json:"is_featured"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BookAggregates holds the derived review statistics for a book.
type BookAggregates struct {
	NumReviews    int     `json:"num_reviews"`
	AverageRating float64 `json:"average_rating"`
}
