package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hasib072/BookNest/internal/domain"
	apperrors "github.com/Hasib072/BookNest/pkg/errors"
)

func newUserTestFixture(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewUserRepository(mock)
	return repo, mock
}

func sampleUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	code := "123456"
	expires := now.Add(24 * time.Hour)
	return &domain.User{
		ID:                    "4b7f1cbb-3f43-4a34-9e2c-9c6b21a0f001",
		Email:                 "alice@example.com",
		PasswordHash:          "hash-abc",
		Name:                  "Alice Smith",
		Role:                  domain.RoleMember,
		IsVerified:            false,
		VerificationCode:      &code,
		VerificationExpiresAt: &expires,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

func userColumns() []string {
	return []string{
		"id", "email", "password_hash", "name", "role", "is_verified",
		"verification_code", "verification_expires_at", "last_login_at",
		"created_at", "updated_at",
	}
}

func userRow(u *domain.User) *pgxmock.Rows {
	return pgxmock.NewRows(userColumns()).AddRow(
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.IsVerified,
		u.VerificationCode, u.VerificationExpiresAt, u.LastLoginAt,
		u.CreatedAt, u.UpdatedAt,
	)
}

func TestUserRepository_Create_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.IsVerified,
			u.VerificationCode, u.VerificationExpiresAt, u.LastLoginAt,
			u.CreatedAt, u.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), u)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.IsVerified,
			u.VerificationCode, u.VerificationExpiresAt, u.LastLoginAt,
			u.CreatedAt, u.UpdatedAt,
		).
		WillReturnError(fmt.Errorf("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), u)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists), "expected ErrAlreadyExists, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE email =").
		WithArgs(u.Email).
		WillReturnRows(userRow(u))

	got, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Name, got.Name)
	require.NotNil(t, got.VerificationCode)
	assert.Equal(t, "123456", *got.VerificationCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "missing-id")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByVerificationCode_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE verification_code =").
		WithArgs("123456").
		WillReturnRows(userRow(u))

	got, err := repo.GetByVerificationCode(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.False(t, got.IsVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByVerificationCode_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE verification_code =").
		WithArgs("000000").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByVerificationCode(context.Background(), "000000")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()
	u.IsVerified = true
	u.VerificationCode = nil
	u.VerificationExpiresAt = nil

	mock.ExpectExec("UPDATE users").
		WithArgs(
			u.Email, u.PasswordHash, u.Name, u.Role, u.IsVerified,
			u.VerificationCode, u.VerificationExpiresAt, u.LastLoginAt,
			pgxmock.AnyArg(), u.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), u)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectExec("UPDATE users").
		WithArgs(
			u.Email, u.PasswordHash, u.Name, u.Role, u.IsVerified,
			u.VerificationCode, u.VerificationExpiresAt, u.LastLoginAt,
			pgxmock.AnyArg(), u.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), u)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
