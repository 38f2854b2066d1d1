package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Hasib072/BookNest/internal/domain"
	"github.com/Hasib072/BookNest/internal/event"
	"github.com/Hasib072/BookNest/internal/repository"
	"github.com/Hasib072/BookNest/internal/storage"
	apperrors "github.com/Hasib072/BookNest/pkg/errors"
	"github.com/Hasib072/BookNest/pkg/pagination"
)

// maxCoverSize is the upload limit for cover images.
const maxCoverSize = 5 << 20 // 5 MiB

// coverExtensions maps the accepted cover content types to file extensions.
var coverExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// CreateBookInput holds the parameters for adding a book to the catalog.
type CreateBookInput struct {
	Title       string
	Author      string
	Rating      float64
	Description string
	Genre       domain.Genre
	Tags        []string
	IsFeatured  bool
	Cover       *CoverUpload
}

// CoverUpload holds the cover image file from a multipart request.
type CoverUpload struct {
	ContentType string
	Size        int64
	Data        io.Reader
}

// BookService implements the business logic for catalog operations.
type BookService struct {
	bookRepo repository.BookRepository
	storage  storage.Storage
	producer *event.Producer
	logger   *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(
	bookRepo repository.BookRepository,
	storage storage.Storage,
	producer *event.Producer,
	logger *slog.Logger,
) *BookService {
	return &BookService{
		bookRepo: bookRepo,
		storage:  storage,
		producer: producer,
		logger:   logger,
	}
}

// CreateBook validates the input, stores the cover image, and inserts the
// book. A catalog entry with the same title and author fails with
// AlreadyExists.
func (s *BookService) CreateBook(ctx context.Context, input *CreateBookInput) (*domain.Book, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if input.Author == "" {
		return nil, apperrors.InvalidInput("author is required")
	}
	if input.Rating < 0 || input.Rating > 5 {
		return nil, apperrors.InvalidInput("rating must be between 0 and 5")
	}
	if !domain.ValidGenre(input.Genre) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("genre must be one of %v", domain.Genres))
	}
	if input.Cover == nil {
		return nil, apperrors.InvalidInput("cover image is required")
	}

	ext, ok := coverExtensions[input.Cover.ContentType]
	if !ok {
		return nil, apperrors.InvalidInput("cover must be a jpeg, png, gif, or webp image")
	}
	if input.Cover.Size > maxCoverSize {
		return nil, apperrors.InvalidInput("cover image must not exceed 5MB")
	}

	exists, err := s.bookRepo.ExistsByTitleAuthor(ctx, input.Title, input.Author)
	if err != nil {
		return nil, fmt.Errorf("check book exists: %w", err)
	}
	if exists {
		return nil, apperrors.AlreadyExists("book", "title", input.Title)
	}

	id := uuid.New().String()
	upload, err := s.storage.Upload(ctx, &storage.UploadInput{
		Key:         id + ext,
		ContentType: input.Cover.ContentType,
		Size:        input.Cover.Size,
		Data:        input.Cover.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("upload cover: %w", err)
	}

	now := time.Now().UTC()
	book := &domain.Book{
		ID:          id,
		Title:       input.Title,
		Author:      input.Author,
		Rating:      input.Rating,
		CoverURL:    upload.URL,
		Description: input.Description,
		Tags:        input.Tags,
		Genre:       input.Genre,
		IsFeatured:  input.IsFeatured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		// The cover is already on disk; clean it up so a rejected insert
		// leaves no orphan file.
		if delErr := s.storage.Delete(ctx, upload.Key); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to clean up cover after insert failure",
				slog.String("key", upload.Key),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	// Publish catalog event (non-blocking on failure).
	if err := s.producer.PublishBookCreated(ctx, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.created event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book created",
		slog.String("book_id", book.ID),
		slog.String("title", book.Title),
		slog.String("author", book.Author),
	)

	return book, nil
}

// GetBook retrieves a single book by ID.
func (s *BookService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// ListBooks returns a filtered page of the catalog, newest first, along with
// the total match count.
func (s *BookService) ListBooks(ctx context.Context, filter repository.BookFilter, params pagination.Params) ([]domain.Book, int, error) {
	if filter.Genre != "" && !domain.ValidGenre(filter.Genre) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("genre must be one of %v", domain.Genres))
	}

	books, total, err := s.bookRepo.List(ctx, filter, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}

	return books, total, nil
}
