package http

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Hasib072/BookNest/internal/service"
	"github.com/Hasib072/BookNest/pkg/httputil"
	"github.com/Hasib072/BookNest/pkg/middleware"
	"github.com/Hasib072/BookNest/pkg/validator"
)

// SessionCookieConfig controls the session cookie written on signup, login,
// and verification.
type SessionCookieConfig struct {
	// TTL is the cookie lifetime; it should match the JWT expiry so token
	// and cookie expire together.
	TTL time.Duration

	// Secure marks the cookie HTTPS-only. Off in development.
	Secure bool
}

// AuthHandler handles HTTP requests for auth endpoints.
type AuthHandler struct {
	service *service.UserService
	cookie  SessionCookieConfig
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.UserService, cookie SessionCookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, cookie: cookie, logger: logger}
}

// --- Request DTOs ---

// SignupRequest is the JSON request body for account creation.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyEmailRequest is the JSON request body for the code exchange.
type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// ResendVerificationRequest is the JSON request body for requesting a new code.
type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// --- Handlers ---

// Signup handles POST /api/v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req SignupRequest
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

	user, token, err := h.service.Signup(r.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.setSessionCookie(w, token)
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: user})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req LoginRequest
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

	user, token, err := h.service.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.setSessionCookie(w, token)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"message": "logged out"},
	})
}

// VerifyEmail handles POST /api/v1/auth/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req VerifyEmailRequest
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

	user, token, err := h.service.VerifyEmail(r.Context(), req.Code)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	// Reissue the session so the verified claim is current.
	h.setSessionCookie(w, token)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

// ResendVerification handles POST /api/v1/auth/resend-verification
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req ResendVerificationRequest
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

	if err := h.service.ResendVerification(r.Context(), req.Email, clientIP(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"message": "if the email is registered and unverified, a new code has been sent"},
	})
}

// CheckAuth handles GET /api/v1/auth/check-auth
func (h *AuthHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

// --- Cookie helpers ---

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clientIP extracts the caller's address for rate limiting, preferring the
// first X-Forwarded-For hop when a proxy is in front.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
