package domain

import (
	"time"
)

// Review is a single user's opinion of a single book. The (BookID, UserID)
// pair is unique; there is no update or delete path for an existing review.
type Review struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"` // 1-5 inclusive
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// EnrichedReview is the read-time projection of a review joined with the
// reviewer's display name and the reviewed book's catalog fields.
type EnrichedReview struct {
	Review
	ReviewerName string `json:"reviewer_name"`
	BookTitle    string `json:"book_title"`
	BookAuthor   string `json:"book_author"`
	BookCoverURL string `json:"book_cover_url"`
}
