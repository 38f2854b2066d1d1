package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Hasib072/BookNest/internal/domain"
	"github.com/Hasib072/BookNest/internal/event"
	"github.com/Hasib072/BookNest/internal/repository"
	apperrors "github.com/Hasib072/BookNest/pkg/errors"
	"github.com/Hasib072/BookNest/pkg/pagination"
)

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	BookID  string
	Rating  int
	Comment string
}

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	bookRepo   repository.BookRepository
	userRepo   repository.UserRepository
	producer   *event.Producer
	logger     *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	bookRepo repository.BookRepository,
	userRepo repository.UserRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		bookRepo:   bookRepo,
		userRepo:   userRepo,
		producer:   producer,
		logger:     logger,
	}
}

// Submit creates a review for a book on behalf of the given user and returns
// it together with the book's recomputed aggregates. Checks run in a fixed
// order: field validation, then the caller's verified status, then book
// existence, then the one-review-per-user rule. The insert and the aggregate
// recompute share one transaction, and the (book_id, user_id) unique index
// backstops the duplicate pre-check under concurrent submits.
func (s *ReviewService) Submit(ctx context.Context, userID string, input SubmitReviewInput) (*domain.Review, *domain.BookAggregates, error) {
	if input.BookID == "" {
		return nil, nil, apperrors.InvalidInput("book_id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(input.Comment)
	if comment == "" {
		return nil, nil, apperrors.InvalidInput("comment must not be empty")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get reviewer: %w", err)
	}
	if !user.CanSubmitReviews() {
		return nil, nil, apperrors.Forbidden("account is not verified")
	}

	book, err := s.bookRepo.GetByID(ctx, input.BookID)
	if err != nil {
		return nil, nil, fmt.Errorf("get book for review: %w", err)
	}

	exists, err := s.reviewRepo.ExistsByBookAndUser(ctx, book.ID, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("check existing review: %w", err)
	}
	if exists {
		return nil, nil, apperrors.AlreadyExists("review", "book", book.ID)
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		BookID:    book.ID,
		UserID:    user.ID,
		Rating:    input.Rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}

	agg, err := s.reviewRepo.CreateAndRecompute(ctx, review)
	if err != nil {
		return nil, nil, fmt.Errorf("create review: %w", err)
	}

	// Publish review event (non-blocking on failure).
	if err := s.producer.PublishReviewCreated(ctx, review, agg); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", review.ID),
		slog.String("book_id", book.ID),
		slog.String("user_id", user.ID),
		slog.Int("rating", review.Rating),
		slog.Int("num_reviews", agg.NumReviews),
		slog.Float64("average_rating", agg.AverageRating),
	)

	return review, agg, nil
}

// ListReviews returns a filtered page of reviews enriched with reviewer and
// book fields, newest first, along with the total match count.
func (s *ReviewService) ListReviews(ctx context.Context, filter repository.ReviewFilter, params pagination.Params) ([]domain.EnrichedReview, int, error) {
	reviews, total, err := s.reviewRepo.List(ctx, filter, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, total, nil
}
