package domain

import (
	"time"
)

// User roles.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User represents a registered account.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	IsVerified   bool   `json:"is_verified"`

	// VerificationCode and its expiry are set at signup and on each resend,
	// and cleared exactly once when the matching code is presented.
	VerificationCode      *string    `json:"-"`
	VerificationExpiresAt *time.Time `json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CanSubmitReviews reports whether the account may write reviews. Unverified
// accounts can read the catalog but not submit.
func (u *User) CanSubmitReviews() bool {
	return u.IsVerified
}
