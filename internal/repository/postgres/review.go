package postgres

import (
	"context"
	"fmt"
	"math"

	"github.com/Hasib072/BookNest/internal/domain"
	"github.com/Hasib072/BookNest/internal/repository"
	"github.com/Hasib072/BookNest/pkg/database"
	apperrors "github.com/Hasib072/BookNest/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// CreateAndRecompute inserts the review and recomputes the parent book's
// aggregates in a single transaction. The SELECT runs inside the same
// transaction as the INSERT, so the recomputed count and mean always include
// the new row, and a crash between the two statements rolls both back.
func (r *ReviewRepository) CreateAndRecompute(ctx context.Context, review *domain.Review) (*domain.BookAggregates, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insertQuery := `
		INSERT INTO reviews (id, book_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = tx.Exec(ctx, insertQuery,
		review.ID,
		review.BookID,
		review.UserID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		// The (book_id, user_id) unique index backstops the service-level
		// already-reviewed check against concurrent submits.
		if isUniqueViolation(err) {
			return nil, apperrors.AlreadyExists("review", "book", review.BookID)
		}
		return nil, fmt.Errorf("insert review: %w", err)
	}

	var agg domain.BookAggregates
	aggregateQuery := `
		SELECT COUNT(*), COALESCE(AVG(rating), 0)
		FROM reviews
		WHERE book_id = $1`

	if err := tx.QueryRow(ctx, aggregateQuery, review.BookID).Scan(&agg.NumReviews, &agg.AverageRating); err != nil {
		return nil, fmt.Errorf("recompute aggregates: %w", err)
	}

	// Round average rating to one decimal place.
	agg.AverageRating = math.Round(agg.AverageRating*10) / 10

	updateQuery := `
		UPDATE books
		SET num_reviews = $1, average_rating = $2, updated_at = NOW()
		WHERE id = $3`

	ct, err := tx.Exec(ctx, updateQuery, agg.NumReviews, agg.AverageRating, review.BookID)
	if err != nil {
		return nil, fmt.Errorf("update book aggregates: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, apperrors.NotFound("book", review.BookID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &agg, nil
}

// ExistsByBookAndUser reports whether the user has already reviewed the book.
func (r *ReviewRepository) ExistsByBookAndUser(ctx context.Context, bookID, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE book_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, bookID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check review exists: %w", err)
	}

	return exists, nil
}

// List returns a filtered page of reviews joined with reviewer and book
// fields, newest first, with the total match count.
func (r *ReviewRepository) List(ctx context.Context, filter repository.ReviewFilter, limit, offset int) ([]domain.EnrichedReview, int, error) {
	query := `
		SELECT r.id, r.book_id, r.user_id, r.rating, r.comment, r.created_at,
		       u.name, b.title, b.author, b.cover_url,
		       count(*) OVER() AS total_count
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		JOIN books b ON b.id = r.book_id
		WHERE ($1 = '' OR r.book_id::text = $1)
		  AND ($2 = '' OR r.user_id::text = $2)
		ORDER BY r.created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, filter.BookID, filter.UserID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.EnrichedReview
		totalCount int
	)

	for rows.Next() {
		var rv domain.EnrichedReview

		if err := rows.Scan(
			&rv.ID,
			&rv.BookID,
			&rv.UserID,
			&rv.Rating,
			&rv.Comment,
			&rv.CreatedAt,
			&rv.ReviewerName,
			&rv.BookTitle,
			&rv.BookAuthor,
			&rv.BookCoverURL,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}

		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.EnrichedReview{}
	}

	return reviews, totalCount, nil
}
