package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Hasib072/BookNest/internal/auth"
	"github.com/Hasib072/BookNest/internal/domain"
	"github.com/Hasib072/BookNest/internal/event"
	"github.com/Hasib072/BookNest/internal/mailer"
	"github.com/Hasib072/BookNest/internal/ratelimit"
	"github.com/Hasib072/BookNest/internal/repository"
	apperrors "github.com/Hasib072/BookNest/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// verificationCodeTTL is how long a freshly issued verification code stays
// valid.
const verificationCodeTTL = 24 * time.Hour

// UserService implements the business logic for account and auth operations.
type UserService struct {
	userRepo   repository.UserRepository
	jwtManager *auth.JWTManager
	producer   *event.Producer
	mailer     mailer.Mailer
	limiter    ratelimit.Limiter
	logger     *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	jwtManager *auth.JWTManager,
	producer *event.Producer,
	mailer mailer.Mailer,
	limiter ratelimit.Limiter,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		producer:   producer,
		mailer:     mailer,
		limiter:    limiter,
		logger:     logger,
	}
}

// --- Input types ---

// SignupInput holds the parameters for creating a new account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput holds the parameters for logging in.
type LoginInput struct {
	Email    string
	Password string
}

// UpdateProfileInput holds the parameters for updating a profile. Nil fields
// are left unchanged.
type UpdateProfileInput struct {
	Name  *string
	Email *string
}

// --- Auth Operations ---

// Signup creates a new unverified account, emails the verification code, and
// returns the user with a session token.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (*domain.User, string, error) {
	if input.Name == "" {
		return nil, "", apperrors.InvalidInput("name is required")
	}
	if input.Email == "" {
		return nil, "", apperrors.InvalidInput("email is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, "", err
	}

	// Check for an existing account first so the duplicate message can tell
	// a verified account apart from one still waiting on its code. The
	// unique index on email backstops the race.
	if existing, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		appErr := apperrors.AlreadyExists("user", "email", input.Email)
		if existing.IsVerified {
			appErr.Message = "an account with this email already exists, please log in"
		} else {
			appErr.Message = "an account with this email already exists but is not verified, please verify it or request a new code"
		}
		return nil, "", appErr
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(verificationCodeTTL)
	user := &domain.User{
		ID:                    uuid.New().String(),
		Email:                 input.Email,
		PasswordHash:          string(hashedPassword),
		Name:                  input.Name,
		Role:                  domain.RoleMember,
		IsVerified:            false,
		VerificationCode:      &code,
		VerificationExpiresAt: &expiresAt,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, user.Email, user.Name, code); err != nil {
		s.logger.ErrorContext(ctx, "failed to send verification email",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	token, err := s.jwtManager.GenerateSessionToken(user.ID, user.Email, user.Role, user.IsVerified)
	if err != nil {
		return nil, "", fmt.Errorf("generate session token: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed up",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, token, nil
}

// Login authenticates a user with email and password, returning the user and
// a session token.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*domain.User, string, error) {
	if input.Email == "" {
		return nil, "", apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, "", apperrors.InvalidInput("password is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, "", apperrors.Unauthorized("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", apperrors.Unauthorized("invalid email or password")
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to record last login",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	token, err := s.jwtManager.GenerateSessionToken(user.ID, user.Email, user.Role, user.IsVerified)
	if err != nil {
		return nil, "", fmt.Errorf("generate session token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, token, nil
}

// VerifyEmail exchanges a pending verification code for verified status. The
// code is single-use: it is cleared together with its expiry the moment it
// matches. A fresh session token reflecting the verified claim is returned.
func (s *UserService) VerifyEmail(ctx context.Context, code string) (*domain.User, string, error) {
	if code == "" {
		return nil, "", apperrors.InvalidInput("verification code is required")
	}

	user, err := s.userRepo.GetByVerificationCode(ctx, code)
	if err != nil {
		return nil, "", apperrors.InvalidInput("invalid or expired verification code")
	}

	if user.VerificationExpiresAt == nil || time.Now().UTC().After(*user.VerificationExpiresAt) {
		return nil, "", apperrors.InvalidInput("invalid or expired verification code")
	}

	user.IsVerified = true
	user.VerificationCode = nil
	user.VerificationExpiresAt = nil

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, "", fmt.Errorf("mark user verified: %w", err)
	}

	if err := s.producer.PublishUserVerified(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.verified event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.mailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
		s.logger.ErrorContext(ctx, "failed to send welcome email",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	token, err := s.jwtManager.GenerateSessionToken(user.ID, user.Email, user.Role, user.IsVerified)
	if err != nil {
		return nil, "", fmt.Errorf("generate session token: %w", err)
	}

	s.logger.InfoContext(ctx, "user verified",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, token, nil
}

// ResendVerification issues a fresh verification code for an unverified
// account. clientKey identifies the caller for rate limiting. Unknown emails
// are answered the same as known ones.
func (s *UserService) ResendVerification(ctx context.Context, email, clientKey string) error {
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}

	allowed, err := s.limiter.Allow(ctx, clientKey)
	if err != nil {
		// Fail open: a limiter outage must not lock users out of
		// verification.
		s.logger.ErrorContext(ctx, "rate limiter unavailable",
			slog.String("error", err.Error()),
		)
		allowed = true
	}
	if !allowed {
		return apperrors.RateLimited("too many verification emails requested, try again later")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the email exists.
		s.logger.InfoContext(ctx, "verification resend requested for unknown email",
			slog.String("email", email),
		)
		return nil
	}

	if user.IsVerified {
		return apperrors.InvalidInput("account is already verified")
	}

	code, err := generateVerificationCode()
	if err != nil {
		return err
	}

	expiresAt := time.Now().UTC().Add(verificationCodeTTL)
	user.VerificationCode = &code
	user.VerificationExpiresAt = &expiresAt

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("store new verification code: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, user.Email, user.Name, code); err != nil {
		s.logger.ErrorContext(ctx, "failed to send verification email",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "verification code resent",
		slog.String("user_id", user.ID),
	)

	return nil
}

// --- Profile Operations ---

// GetProfile retrieves a user by their ID.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return user, nil
}

// UpdateProfile updates a user's profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("name must not be empty")
		}
		user.Name = *input.Name
	}

	if input.Email != nil {
		if *input.Email == "" {
			return nil, apperrors.InvalidInput("email must not be empty")
		}
		user.Email = *input.Email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.InfoContext(ctx, "user profile updated",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// --- Helpers ---

// generateVerificationCode returns a random zero-padded 6-digit code.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// validatePassword checks that the password meets minimum complexity requirements.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return apperrors.InvalidInput("password must contain at least one uppercase letter, one lowercase letter, and one digit")
	}

	return nil
}
