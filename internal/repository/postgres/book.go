package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Hasib072/BookNest/internal/domain"
	"github.com/Hasib072/BookNest/internal/repository"
	"github.com/Hasib072/BookNest/pkg/database"
	apperrors "github.com/Hasib072/BookNest/pkg/errors"
)

// BookRepository implements repository.BookRepository using PostgreSQL.
type BookRepository struct {
	pool database.DBTX
}

// NewBookRepository creates a new PostgreSQL-backed book repository.
func NewBookRepository(pool database.DBTX) *BookRepository {
	return &BookRepository{pool: pool}
}

// Create inserts a new book into the database.
func (r *BookRepository) Create(ctx context.Context, b *domain.Book) error {
	query := `
		INSERT INTO books (id, title, author, rating, average_rating, num_reviews, cover_url, description, tags, genre, is_featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		b.ID,
		b.Title,
		b.Author,
		b.Rating,
		b.AverageRating,
		b.NumReviews,
		b.CoverURL,
		b.Description,
		b.Tags,
		b.Genre,
		b.IsFeatured,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("book", "title", b.Title)
		}
		return fmt.Errorf("insert book: %w", err)
	}

	return nil
}

// GetByID retrieves a book by its ID.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	query := `
		SELECT id, title, author, rating, average_rating, num_reviews, cover_url, description, tags, genre, is_featured, created_at, updated_at
		FROM books
		WHERE id = $1`

	var b domain.Book
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Rating,
		&b.AverageRating,
		&b.NumReviews,
		&b.CoverURL,
		&b.Description,
		&b.Tags,
		&b.Genre,
		&b.IsFeatured,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}

	return &b, nil
}

// ExistsByTitleAuthor reports whether a book with the same title and author
// already exists.
func (r *BookRepository) ExistsByTitleAuthor(ctx context.Context, title, author string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM books WHERE title = $1 AND author = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, title, author).Scan(&exists); err != nil {
		return false, fmt.Errorf("check book exists: %w", err)
	}

	return exists, nil
}

// List returns a filtered page of books, newest first, with the total match count.
func (r *BookRepository) List(ctx context.Context, filter repository.BookFilter, limit, offset int) ([]domain.Book, int, error) {
	query := `
		SELECT id, title, author, rating, average_rating, num_reviews, cover_url, description, tags, genre, is_featured, created_at, updated_at,
		       count(*) OVER() AS total_count
		FROM books
		WHERE ($1 = '' OR title ILIKE '%' || $1 || '%' OR author ILIKE '%' || $1 || '%' OR EXISTS (
		          SELECT 1 FROM unnest(tags) AS t WHERE t ILIKE '%' || $1 || '%'))
		  AND ($2 = '' OR genre = $2)
		  AND ($3::boolean IS NULL OR is_featured = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`

	rows, err := r.pool.Query(ctx, query, filter.Search, string(filter.Genre), filter.Featured, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var (
		books      []domain.Book
		totalCount int
	)

	for rows.Next() {
		var b domain.Book

		if err := rows.Scan(
			&b.ID,
			&b.Title,
			&b.Author,
			&b.Rating,
			&b.AverageRating,
			&b.NumReviews,
			&b.CoverURL,
			&b.Description,
			&b.Tags,
			&b.Genre,
			&b.IsFeatured,
			&b.CreatedAt,
			&b.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan book row: %w", err)
		}

		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate book rows: %w", err)
	}

	if books == nil {
		books = []domain.Book{}
	}

	return books, totalCount, nil
}
