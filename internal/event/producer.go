package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Hasib072/BookNest/internal/domain"
	pkgkafka "github.com/Hasib072/BookNest/pkg/kafka"
)

// Kafka topic constants for BookNest domain events.
const (
	TopicUserRegistered = "booknest.user.registered"
	TopicUserVerified   = "booknest.user.verified"
	TopicBookCreated    = "booknest.book.created"
	TopicReviewCreated  = "booknest.review.created"
)

// Aggregate type constants.
const (
	AggregateTypeUser   = "user"
	AggregateTypeBook   = "book"
	AggregateTypeReview = "review"
)

// Source identifier for events originating from this service.
const Source = "booknest"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// UserVerifiedData is the payload for a user.verified event.
type UserVerifiedData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// BookCreatedData is the payload for a book.created event.
type BookCreatedData struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
}

// ReviewCreatedData is the payload for a review.created event. It carries the
// recomputed book aggregates so consumers don't need to re-read the catalog.
type ReviewCreatedData struct {
	ID            string  `json:"id"`
	BookID        string  `json:"book_id"`
	UserID        string  `json:"user_id"`
	Rating        int     `json:"rating"`
	NumReviews    int     `json:"num_reviews"`
	AverageRating float64 `json:"average_rating"`
}

// Producer publishes BookNest domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, Source, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}

// PublishUserVerified publishes a user.verified event.
func (p *Producer) PublishUserVerified(ctx context.Context, user *domain.User) error {
	data := UserVerifiedData{
		ID:    user.ID,
		Email: user.Email,
	}

	event, err := pkgkafka.NewEvent(TopicUserVerified, user.ID, AggregateTypeUser, Source, data)
	if err != nil {
		return fmt.Errorf("create user.verified event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserVerified, event); err != nil {
		return fmt.Errorf("publish user.verified event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.verified event",
		slog.String("user_id", user.ID),
	)

	return nil
}

// PublishBookCreated publishes a book.created event.
func (p *Producer) PublishBookCreated(ctx context.Context, book *domain.Book) error {
	data := BookCreatedData{
		ID:     book.ID,
		Title:  book.Title,
		Author: book.Author,
		Genre:  string(book.Genre),
	}

	event, err := pkgkafka.NewEvent(TopicBookCreated, book.ID, AggregateTypeBook, Source, data)
	if err != nil {
		return fmt.Errorf("create book.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicBookCreated, event); err != nil {
		return fmt.Errorf("publish book.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published book.created event",
		slog.String("book_id", book.ID),
		slog.String("title", book.Title),
	)

	return nil
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review, agg *domain.BookAggregates) error {
	data := ReviewCreatedData{
		ID:            review.ID,
		BookID:        review.BookID,
		UserID:        review.UserID,
		Rating:        review.Rating,
		NumReviews:    agg.NumReviews,
		AverageRating: agg.AverageRating,
	}

	event, err := pkgkafka.NewEvent(TopicReviewCreated, review.ID, AggregateTypeReview, Source, data)
	if err != nil {
		return fmt.Errorf("create review.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewCreated, event); err != nil {
		return fmt.Errorf("publish review.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.String("review_id", review.ID),
		slog.String("book_id", review.BookID),
	)

	return nil
}
