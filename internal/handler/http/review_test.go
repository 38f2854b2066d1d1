package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Hasib072/BookNest/internal/domain"
	"github.com/Hasib072/BookNest/internal/repository"
	"github.com/Hasib072/BookNest/internal/service"
	apperrors "github.com/Hasib072/BookNest/pkg/errors"
	"github.com/Hasib072/BookNest/pkg/middleware"
)

func testReviewService(reviewRepo *mockReviewRepo, bookRepo *mockBookRepo, userRepo *mockUserRepo) *service.ReviewService {
	return service.NewReviewService(reviewRepo, bookRepo, userRepo, handlerTestProducer(), handlerTestLogger())
}

// setupReviewRouter mirrors the production review routes: listing is public,
// submission requires a session.
func setupReviewRouter(handler *ReviewHandler, authed bool) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Get("/", handler.List)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			if authed {
				r.Use(middleware.Auth(fakeValidator(testUserID, domain.RoleMember)))
			} else {
				r.Use(middleware.Auth(func(token string) (*middleware.Claims, error) {
					return nil, apperrors.Unauthorized("invalid session token")
				}))
			}

			r.Post("/", handler.Submit)
		})
	})
	return r
}

func verifiedReviewer() *domain.User {
	return &domain.User{
		ID:         testUserID,
		Email:      "alice@example.com",
		Name:       "Alice Smith",
		Role:       domain.RoleMember,
		IsVerified: true,
	}
}

// ============================================================================
// Submit Tests
// ============================================================================

func TestSubmitReview_Success(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	bookRepo := new(mockBookRepo)
	userRepo := new(mockUserRepo)
	handler := NewReviewHandler(testReviewService(reviewRepo, bookRepo, userRepo), handlerTestLogger())
	router := setupReviewRouter(handler, true)

	userRepo.On("GetByID", mock.Anything, testUserID).Return(verifiedReviewer(), nil)
	bookRepo.On("GetByID", mock.Anything, testBookID).Return(&domain.Book{ID: testBookID, Title: "The Great Gatsby"}, nil)
	reviewRepo.On("ExistsByBookAndUser", mock.Anything, testBookID, testUserID).Return(false, nil)
	reviewRepo.On("CreateAndRecompute", mock.Anything, mock.AnythingOfType("*domain.Review")).
		Return(&domain.BookAggregates{NumReviews: 1, AverageRating: 5.0}, nil)

	rec := postJSON(t, router, "/api/v1/reviews/", SubmitReviewRequest{
		BookID:  testBookID,
		Rating:  5,
		Comment: "A masterpiece.",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"num_reviews":1`)
	assert.Contains(t, body, `"average_rating":5`)
	reviewRepo.AssertExpectations(t)
}

func TestSubmitReview_Unauthenticated(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	bookRepo := new(mockBookRepo)
	userRepo := new(mockUserRepo)
	handler := NewReviewHandler(testReviewService(reviewRepo, bookRepo, userRepo), handlerTestLogger())
	router := setupReviewRouter(handler, false)

	rec := postJSON(t, router, "/api/v1/reviews/", SubmitReviewRequest{
		BookID:  testBookID,
		Rating:  5,
		Comment: "A masterpiece.",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	reviewRepo.AssertNotCalled(t, "CreateAndRecompute", mock.Anything, mock.Anything)
}

func TestSubmitReview_UnverifiedAccount(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	bookRepo := new(mockBookRepo)
	userRepo := new(mockUserRepo)
	handler := NewReviewHandler(testReviewService(reviewRepo, bookRepo, userRepo), handlerTestLogger())
	router := setupReviewRouter(handler, true)

	unverified := verifiedReviewer()
	unverified.IsVerified = false
	userRepo.On("GetByID", mock.Anything, testUserID).Return(unverified, nil)

	rec := postJSON(t, router, "/api/v1/reviews/", SubmitReviewRequest{
		BookID:  testBookID,
		Rating:  5,
		Comment: "A masterpiece.",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
}

func TestSubmitReview_ValidationError(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	bookRepo := new(mockBookRepo)
	userRepo := new(mockUserRepo)
	handler := NewReviewHandler(testReviewService(reviewRepo, bookRepo, userRepo), handlerTestLogger())
	router := setupReviewRouter(handler, true)

	tests := []struct {
		name string
		body SubmitReviewRequest
	}{
		{"missing book id", SubmitReviewRequest{Rating: 5, Comment: "fine"}},
		{"bad book id", SubmitReviewRequest{BookID: "not-a-uuid", Rating: 5, Comment: "fine"}},
		{"rating out of range", SubmitReviewRequest{BookID: testBookID, Rating: 6, Comment: "fine"}},
		{"missing comment", SubmitReviewRequest{BookID: testBookID, Rating: 5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, router, "/api/v1/reviews/", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestSubmitReview_BookNotFound(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	bookRepo := new(mockBookRepo)
	userRepo := new(mockUserRepo)
	handler := NewReviewHandler(testReviewService(reviewRepo, bookRepo, userRepo), handlerTestLogger())
	router := setupReviewRouter(handler, true)

	userRepo.On("GetByID", mock.Anything, testUserID).Return(verifiedReviewer(), nil)
	bookRepo.On("GetByID", mock.Anything, testBookID).Return(nil, apperrors.NotFound("book", testBookID))

	rec := postJSON(t, router, "/api/v1/reviews/", SubmitReviewRequest{
		BookID:  testBookID,
		Rating:  5,
		Comment: "A masterpiece.",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitReview_Duplicate(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	bookRepo := new(mockBookRepo)
	userRepo := new(mockUserRepo)
	handler := NewReviewHandler(testReviewService(reviewRepo, bookRepo, userRepo), handlerTestLogger())
	router := setupReviewRouter(handler, true)

	userRepo.On("GetByID", mock.Anything, testUserID).Return(verifiedReviewer(), nil)
	bookRepo.On("GetByID", mock.Anything, testBookID).Return(&domain.Book{ID: testBookID}, nil)
	reviewRepo.On("ExistsByBookAndUser", mock.Anything, testBookID, testUserID).Return(true, nil)

	rec := postJSON(t, router, "/api/v1/reviews/", SubmitReviewRequest{
		BookID:  testBookID,
		Rating:  5,
		Comment: "A masterpiece.",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ALREADY_EXISTS", resp.Error.Code)
}

// ============================================================================
// List Tests
// ============================================================================

func TestListReviews_FilteredByBookAndUser(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	bookRepo := new(mockBookRepo)
	userRepo := new(mockUserRepo)
	handler := NewReviewHandler(testReviewService(reviewRepo, bookRepo, userRepo), handlerTestLogger())
	router := setupReviewRouter(handler, true)

	reviews := []domain.EnrichedReview{
		{
			Review: domain.Review{
				ID:        "550e8400-e29b-41d4-a716-446655440099",
				BookID:    testBookID,
				UserID:    testUserID,
				Rating:    5,
				Comment:   "A masterpiece.",
				CreatedAt: time.Now().UTC(),
			},
			ReviewerName: "Alice Smith",
			BookTitle:    "The Great Gatsby",
			BookAuthor:   "F. Scott Fitzgerald",
		},
	}
	expectedFilter := repository.ReviewFilter{BookID: testBookID, UserID: testUserID}
	reviewRepo.On("List", mock.Anything, expectedFilter, 20, 0).Return(reviews, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews/?book="+testBookID+"&user="+testUserID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"reviewer_name":"Alice Smith"`)
	assert.Contains(t, body, `"book_title":"The Great Gatsby"`)
	assert.Contains(t, body, `"total_count":1`)
	reviewRepo.AssertExpectations(t)
}

func TestListReviews_Empty(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	bookRepo := new(mockBookRepo)
	userRepo := new(mockUserRepo)
	handler := NewReviewHandler(testReviewService(reviewRepo, bookRepo, userRepo), handlerTestLogger())
	router := setupReviewRouter(handler, true)

	reviewRepo.On("List", mock.Anything, repository.ReviewFilter{}, 20, 0).
		Return([]domain.EnrichedReview{}, 0, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews/", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}
