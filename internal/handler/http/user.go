package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Hasib072/BookNest/internal/service"
	"github.com/Hasib072/BookNest/pkg/httputil"
	"github.com/Hasib072/BookNest/pkg/middleware"
	"github.com/Hasib072/BookNest/pkg/validator"
)

// UserHandler handles HTTP requests for profile endpoints.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// UpdateProfileRequest is the JSON request body for profile updates.
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// GetProfile handles GET /api/v1/users/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

// UpdateProfile handles PUT /api/v1/users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req UpdateProfileRequest
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

	user, err := h.service.UpdateProfile(r.Context(), userID, service.UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}
