package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hasib072/BookNest/internal/domain"
	"github.com/Hasib072/BookNest/internal/repository"
	apperrors "github.com/Hasib072/BookNest/pkg/errors"
)

func newReviewTestFixture(t *testing.T) (*ReviewRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewReviewRepository(mock)
	return repo, mock
}

func sampleReview() *domain.Review {
	return &domain.Review{
		ID:        "0a1b2c3d-0000-4000-8000-000000000001",
		BookID:    "0a1b2c3d-0000-4000-8000-0000000000b1",
		UserID:    "0a1b2c3d-0000-4000-8000-0000000000u1",
		Rating:    5,
		Comment:   "A wonderful read.",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestReviewRepository_CreateAndRecompute_Success(t *testing.T) {
	repo, mock := newReviewTestFixture(t)
	defer mock.Close()

	rv := sampleReview()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rv.ID, rv.BookID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(AVG\(rating\), 0\)`).
		WithArgs(rv.BookID).
		WillReturnRows(pgxmock.NewRows([]string{"count", "avg"}).AddRow(2, 4.0))
	mock.ExpectExec("UPDATE books").
		WithArgs(2, 4.0, rv.BookID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	agg, err := repo.CreateAndRecompute(context.Background(), rv)
	require.NoError(t, err)
	assert.Equal(t, 2, agg.NumReviews)
	assert.InDelta(t, 4.0, agg.AverageRating, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_CreateAndRecompute_RoundsToOneDecimal(t *testing.T) {
	repo, mock := newReviewTestFixture(t)
	defer mock.Close()

	rv := sampleReview()

	// 5, 4, 4 → mean 4.333... → stored as 4.3.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rv.ID, rv.BookID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(AVG\(rating\), 0\)`).
		WithArgs(rv.BookID).
		WillReturnRows(pgxmock.NewRows([]string{"count", "avg"}).AddRow(3, 4.333333333333333))
	mock.ExpectExec("UPDATE books").
		WithArgs(3, 4.3, rv.BookID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	agg, err := repo.CreateAndRecompute(context.Background(), rv)
	require.NoError(t, err)
	assert.Equal(t, 4.3, agg.AverageRating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_CreateAndRecompute_DuplicatePair(t *testing.T) {
	repo, mock := newReviewTestFixture(t)
	defer mock.Close()

	rv := sampleReview()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rv.ID, rv.BookID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt).
		WillReturnError(fmt.Errorf("ERROR: duplicate key value violates unique constraint \"reviews_book_id_user_id_key\" (SQLSTATE 23505)"))
	mock.ExpectRollback()

	agg, err := repo.CreateAndRecompute(context.Background(), rv)
	assert.Nil(t, agg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists), "expected ErrAlreadyExists, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_CreateAndRecompute_AggregateFailureRollsBack(t *testing.T) {
	repo, mock := newReviewTestFixture(t)
	defer mock.Close()

	rv := sampleReview()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rv.ID, rv.BookID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(AVG\(rating\), 0\)`).
		WithArgs(rv.BookID).
		WillReturnError(fmt.Errorf("connection reset by peer"))
	mock.ExpectRollback()

	_, err := repo.CreateAndRecompute(context.Background(), rv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recompute aggregates")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ExistsByBookAndUser(t *testing.T) {
	repo, mock := newReviewTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("b-1", "u-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByBookAndUser(context.Background(), "b-1", "u-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_List_FilteredByBook(t *testing.T) {
	repo, mock := newReviewTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)
	cols := []string{
		"id", "book_id", "user_id", "rating", "comment", "created_at",
		"name", "title", "author", "cover_url", "total_count",
	}

	mock.ExpectQuery("SELECT r.id, r.book_id").
		WithArgs("b-1", "", 20, 0).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("r-1", "b-1", "u-1", 5, "great", now, "Alice", "Dune", "Frank Herbert", "/covers/dune.jpg", 2).
			AddRow("r-2", "b-1", "u-2", 3, "fine", now.Add(-time.Hour), "Bob", "Dune", "Frank Herbert", "/covers/dune.jpg", 2))

	reviews, total, err := repo.List(context.Background(), repository.ReviewFilter{BookID: "b-1"}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, reviews, 2)
	assert.Equal(t, "Alice", reviews[0].ReviewerName)
	assert.Equal(t, "Dune", reviews[0].BookTitle)
	assert.Equal(t, "Frank Herbert", reviews[0].BookAuthor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_List_Empty(t *testing.T) {
	repo, mock := newReviewTestFixture(t)
	defer mock.Close()

	cols := []string{
		"id", "book_id", "user_id", "rating", "comment", "created_at",
		"name", "title", "author", "cover_url", "total_count",
	}

	mock.ExpectQuery("SELECT r.id, r.book_id").
		WithArgs("", "u-9", 20, 0).
		WillReturnRows(pgxmock.NewRows(cols))

	reviews, total, err := repo.List(context.Background(), repository.ReviewFilter{UserID: "u-9"}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
	assert.NoError(t, mock.ExpectationsWereMet())
}
