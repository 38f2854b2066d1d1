package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Hasib072/BookNest/internal/domain"
	"github.com/Hasib072/BookNest/internal/repository"
	"github.com/Hasib072/BookNest/internal/storage"
	apperrors "github.com/Hasib072/BookNest/pkg/errors"
	"github.com/Hasib072/BookNest/pkg/pagination"
)

// --- Mock Book Repository ---

type mockBookRepository struct {
	mock.Mock
}

func (m *mockBookRepository) Create(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *mockBookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *mockBookRepository) ExistsByTitleAuthor(ctx context.Context, title, author string) (bool, error) {
	args := m.Called(ctx, title, author)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookRepository) List(ctx context.Context, filter repository.BookFilter, limit, offset int) ([]domain.Book, int, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Book), args.Int(1), args.Error(2)
}

// --- Mock Storage ---

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Upload(ctx context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.UploadResult), args.Error(1)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestBookService(bookRepo *mockBookRepository, store *mockStorage) *BookService {
	logger := newTestLogger()
	producer := newTestEventProducer()
	return NewBookService(bookRepo, store, producer, logger)
}

func validCreateBookInput() *CreateBookInput {
	return &CreateBookInput{
		Title:       "The Great Gatsby",
		Author:      "F. Scott Fitzgerald",
		Rating:      4.5,
		Description: "A portrait of the Jazz Age.",
		Genre:       domain.GenreClassic,
		Tags:        []string{"jazz age", "american"},
		Cover: &CoverUpload{
			ContentType: "image/jpeg",
			Size:        1024,
			Data:        bytes.NewReader([]byte("fake-image-bytes")),
		},
	}
}

// --- CreateBook Tests ---

func TestCreateBook_Success(t *testing.T) {
	bookRepo := new(mockBookRepository)
	store := new(mockStorage)
	svc := newTestBookService(bookRepo, store)
	ctx := context.Background()

	bookRepo.On("ExistsByTitleAuthor", ctx, "The Great Gatsby", "F. Scott Fitzgerald").Return(false, nil)
	store.On("Upload", ctx, mock.AnythingOfType("*storage.UploadInput")).
		Return(&storage.UploadResult{Key: "abc.jpg", URL: "http://localhost:8080/media/abc.jpg"}, nil)
	bookRepo.On("Create", ctx, mock.AnythingOfType("*domain.Book")).Return(nil)

	book, err := svc.CreateBook(ctx, validCreateBookInput())

	require.NoError(t, err)
	require.NotNil(t, book)
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "The Great Gatsby", book.Title)
	assert.Equal(t, domain.GenreClassic, book.Genre)
	assert.Equal(t, "http://localhost:8080/media/abc.jpg", book.CoverURL)
	assert.Zero(t, book.NumReviews)
	assert.Zero(t, book.AverageRating)

	bookRepo.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestCreateBook_DuplicateTitleAuthor(t *testing.T) {
	bookRepo := new(mockBookRepository)
	store := new(mockStorage)
	svc := newTestBookService(bookRepo, store)
	ctx := context.Background()

	bookRepo.On("ExistsByTitleAuthor", ctx, "The Great Gatsby", "F. Scott Fitzgerald").Return(true, nil)

	book, err := svc.CreateBook(ctx, validCreateBookInput())

	assert.Nil(t, book)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestCreateBook_InvalidInput(t *testing.T) {
	bookRepo := new(mockBookRepository)
	store := new(mockStorage)
	svc := newTestBookService(bookRepo, store)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(in *CreateBookInput)
	}{
		{"missing title", func(in *CreateBookInput) { in.Title = "" }},
		{"missing author", func(in *CreateBookInput) { in.Author = "" }},
		{"rating below range", func(in *CreateBookInput) { in.Rating = -0.5 }},
		{"rating above range", func(in *CreateBookInput) { in.Rating = 5.5 }},
		{"unknown genre", func(in *CreateBookInput) { in.Genre = "Cookbook" }},
		{"missing cover", func(in *CreateBookInput) { in.Cover = nil }},
		{"bad cover type", func(in *CreateBookInput) { in.Cover.ContentType = "application/pdf" }},
		{"oversized cover", func(in *CreateBookInput) { in.Cover.Size = maxCoverSize + 1 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validCreateBookInput()
			tc.mutate(in)

			book, err := svc.CreateBook(ctx, in)

			assert.Nil(t, book)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestCreateBook_InsertFailure_CleansUpCover(t *testing.T) {
	bookRepo := new(mockBookRepository)
	store := new(mockStorage)
	svc := newTestBookService(bookRepo, store)
	ctx := context.Background()

	bookRepo.On("ExistsByTitleAuthor", ctx, "The Great Gatsby", "F. Scott Fitzgerald").Return(false, nil)
	store.On("Upload", ctx, mock.AnythingOfType("*storage.UploadInput")).
		Return(&storage.UploadResult{Key: "abc.jpg", URL: "http://localhost:8080/media/abc.jpg"}, nil)
	bookRepo.On("Create", ctx, mock.AnythingOfType("*domain.Book")).
		Return(fmt.Errorf("insert book: connection reset"))
	store.On("Delete", ctx, "abc.jpg").Return(nil)

	book, err := svc.CreateBook(ctx, validCreateBookInput())

	assert.Nil(t, book)
	require.Error(t, err)
	store.AssertCalled(t, "Delete", ctx, "abc.jpg")
}

// --- GetBook / ListBooks Tests ---

func TestGetBook_NotFound(t *testing.T) {
	bookRepo := new(mockBookRepository)
	store := new(mockStorage)
	svc := newTestBookService(bookRepo, store)
	ctx := context.Background()

	bookRepo.On("GetByID", ctx, "missing-id").Return(nil, apperrors.ErrNotFound)

	book, err := svc.GetBook(ctx, "missing-id")

	assert.Nil(t, book)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListBooks_PassesFilterAndPagination(t *testing.T) {
	bookRepo := new(mockBookRepository)
	store := new(mockStorage)
	svc := newTestBookService(bookRepo, store)
	ctx := context.Background()

	featured := true
	filter := repository.BookFilter{Search: "gatsby", Genre: domain.GenreClassic, Featured: &featured}
	params := pagination.Params{Page: 2, PerPage: 10, Offset: 10}

	expected := []domain.Book{{ID: "book-1", Title: "The Great Gatsby"}}
	bookRepo.On("List", ctx, filter, 10, 10).Return(expected, 11, nil)

	books, total, err := svc.ListBooks(ctx, filter, params)

	require.NoError(t, err)
	assert.Equal(t, expected, books)
	assert.Equal(t, 11, total)
	bookRepo.AssertExpectations(t)
}

func TestListBooks_UnknownGenre(t *testing.T) {
	bookRepo := new(mockBookRepository)
	store := new(mockStorage)
	svc := newTestBookService(bookRepo, store)
	ctx := context.Background()

	_, _, err := svc.ListBooks(ctx, repository.BookFilter{Genre: "Cookbook"}, pagination.DefaultParams())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	bookRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
