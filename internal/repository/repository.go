package repository

import (
	"context"

	"github.com/Hasib072/BookNest/internal/domain"
)

// UserRepository defines the interface for account persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByVerificationCode retrieves the user holding the given pending
	// verification code.
	GetByVerificationCode(ctx context.Context, code string) (*domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error
}

// BookFilter narrows a catalog listing. Zero values mean "no filter".
type BookFilter struct {
	// Search matches case-insensitively against title, author, and tags.
	Search string

	// Genre restricts to a single genre.
	Genre domain.Genre

	// Featured, when non-nil, restricts to featured (or non-featured) books.
	Featured *bool
}

// BookRepository defines the interface for catalog persistence operations.
type BookRepository interface {
	// Create inserts a new book into the store.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Book, error)

	// ExistsByTitleAuthor reports whether a book with the same title and
	// author is already in the catalog.
	ExistsByTitleAuthor(ctx context.Context, title, author string) (bool, error)

	// List returns a filtered page of books, newest first, along with the
	// total match count.
	List(ctx context.Context, filter BookFilter, limit, offset int) ([]domain.Book, int, error)
}

// ReviewFilter narrows a review listing. Zero values mean "no filter"; when
// both are set the result is their intersection.
type ReviewFilter struct {
	BookID string
	UserID string
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// CreateAndRecompute inserts the review and recomputes the parent book's
	// num_reviews / average_rating in a single transaction, returning the
	// updated aggregates. A duplicate (book, user) pair fails with
	// AlreadyExists.
	CreateAndRecompute(ctx context.Context, review *domain.Review) (*domain.BookAggregates, error)

	// ExistsByBookAndUser reports whether the user has already reviewed the
	// book.
	ExistsByBookAndUser(ctx context.Context, bookID, userID string) (bool, error)

	// List returns a filtered page of reviews enriched with reviewer and book
	// fields, newest first, along with the total match count.
	List(ctx context.Context, filter ReviewFilter, limit, offset int) ([]domain.EnrichedReview, int, error)
}
