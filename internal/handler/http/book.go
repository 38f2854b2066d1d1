package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Hasib072/BookNest/internal/domain"
	"github.com/Hasib072/BookNest/internal/repository"
	"github.com/Hasib072/BookNest/internal/service"
	"github.com/Hasib072/BookNest/pkg/httputil"
	"github.com/Hasib072/BookNest/pkg/pagination"
)

// maxBookFormSize caps a book creation request: the 5MB cover plus headroom
// for the text fields.
const maxBookFormSize = 6 << 20

// BookHandler handles HTTP requests for catalog endpoints.
type BookHandler struct {
	service *service.BookService
	logger  *slog.Logger
}

// NewBookHandler creates a new book HTTP handler.
func NewBookHandler(svc *service.BookService, logger *slog.Logger) *BookHandler {
	return &BookHandler{service: svc, logger: logger}
}

// Create handles POST /api/v1/books (multipart form).
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBookFormSize)

	if err := r.ParseMultipartForm(maxBookFormSize); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid multipart form: " + err.Error()},
		})
		return
	}

	input := &service.CreateBookInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Author:      strings.TrimSpace(r.FormValue("author")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Genre:       domain.Genre(r.FormValue("genre")),
		Tags:        splitTags(r.FormValue("tags")),
	}

	if raw := r.FormValue("rating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "rating must be a number"},
			})
			return
		}
		input.Rating = rating
	}

	if raw := r.FormValue("is_featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "is_featured must be a boolean"},
			})
			return
		}
		input.IsFeatured = featured
	}

	file, header, err := r.FormFile("cover")
	if err == nil {
		defer file.Close()
		input.Cover = &service.CoverUpload{
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Data:        file,
		}
	}

	book, err := h.service.CreateBook(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: book})
}

// List handles GET /api/v1/books
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.BookFilter{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Genre:  domain.Genre(r.URL.Query().Get("genre")),
	}

	if raw := r.URL.Query().Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "featured must be a boolean"},
			})
			return
		}
		filter.Featured = &featured
	}

	params := pagination.FromRequest(r)

	books, total, err := h.service.ListBooks(r.Context(), filter, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK,
		httputil.NewPaginatedResponse(books, total, params.Page, params.PerPage))
}

// Get handles GET /api/v1/books/{id}
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	book, err := h.service.GetBook(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: book})
}

// splitTags parses a comma separated tag list, dropping empties.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
