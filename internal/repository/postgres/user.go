package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Hasib072/BookNest/internal/domain"
	"github.com/Hasib072/BookNest/pkg/database"
	apperrors "github.com/Hasib072/BookNest/pkg/errors"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user into the database.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, role, is_verified, verification_code, verification_expires_at, last_login_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.Name,
		u.Role,
		u.IsVerified,
		u.VerificationCode,
		u.VerificationExpiresAt,
		u.LastLoginAt,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, name, role, is_verified, verification_code, verification_expires_at, last_login_at, created_at, updated_at
		FROM users
		WHERE id = $1`

	return r.scanUser(ctx, query, id)
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, name, role, is_verified, verification_code, verification_expires_at, last_login_at, created_at, updated_at
		FROM users
		WHERE email = $1`

	return r.scanUser(ctx, query, email)
}

// GetByVerificationCode retrieves the user holding the given pending
// verification code.
func (r *UserRepository) GetByVerificationCode(ctx context.Context, code string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, name, role, is_verified, verification_code, verification_expires_at, last_login_at, created_at, updated_at
		FROM users
		WHERE verification_code = $1`

	return r.scanUser(ctx, query, code)
}

// Update modifies an existing user in the database.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET email = $1, password_hash = $2, name = $3, role = $4, is_verified = $5,
		    verification_code = $6, verification_expires_at = $7, last_login_at = $8, updated_at = $9
		WHERE id = $10`

	ct, err := r.pool.Exec(ctx, query,
		u.Email,
		u.PasswordHash,
		u.Name,
		u.Role,
		u.IsVerified,
		u.VerificationCode,
		u.VerificationExpiresAt,
		u.LastLoginAt,
		u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("update user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", u.ID)
	}

	return nil
}

// scanUser is a helper that executes a query expected to return a single user row.
func (r *UserRepository) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Role,
		&u.IsVerified,
		&u.VerificationCode,
		&u.VerificationExpiresAt,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
