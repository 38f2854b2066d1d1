package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Hasib072/BookNest/internal/repository"
	"github.com/Hasib072/BookNest/internal/service"
	"github.com/Hasib072/BookNest/pkg/httputil"
	"github.com/Hasib072/BookNest/pkg/middleware"
	"github.com/Hasib072/BookNest/pkg/pagination"
	"github.com/Hasib072/BookNest/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

// SubmitReviewRequest is the JSON request body for submitting a review.
type SubmitReviewRequest struct {
	BookID  string `json:"book_id" validate:"required,uuid"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required"`
}

// SubmitReviewResponse carries the created review together with the book's
// recomputed aggregates.
type SubmitReviewResponse struct {
	Review     any `json:"review"`
	Aggregates any `json:"aggregates"`
}

// Submit handles POST /api/v1/reviews
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())

	review, agg, err := h.service.Submit(r.Context(), userID, service.SubmitReviewInput{
		BookID:  req.BookID,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{
		Data: SubmitReviewResponse{
			Review:     review,
			Aggregates: agg,
		},
	})
}

// List handles GET /api/v1/reviews
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.ReviewFilter{
		BookID: r.URL.Query().Get("book"),
		UserID: r.URL.Query().Get("user"),
	}

	params := pagination.FromRequest(r)

	reviews, total, err := h.service.ListReviews(r.Context(), filter, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK,
		httputil.NewPaginatedResponse(reviews, total, params.Page, params.PerPage))
}
