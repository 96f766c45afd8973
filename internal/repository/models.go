package repository

import (
	"time"

	"github.com/google/uuid"
)

// Account status values
const (
	StatusActive    = "ACTIVE"
	StatusSuspended = "SUSPENDED"
)

// RoleUser is the default role assigned to every new account
const RoleUser = "USER"

// DefaultQuota is the storage quota assigned to new accounts
const DefaultQuota = "10GB"

// Account represents a registered identity in the database
type Account struct {
	ID           uuid.UUID  `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	Status       string     `db:"status"`
	Roles        []string   `db:"roles"`
	Quota        string     `db:"quota"`
	CreatedAt    time.Time  `db:"created_at"`
	LastLoginAt  *time.Time `db:"last_login_at"`
}

// RefreshToken represents one issued refresh token. Rows are append-only:
// a new login or refresh inserts a new row, and lookup always takes the
// most recently created row per account, superseding older ones.
type RefreshToken struct {
	ID        uuid.UUID `db:"id"`
	AccountID uuid.UUID `db:"account_id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// PasswordReset represents one password-reset request. Like refresh
// tokens, rows are append-only and recency decides which row counts.
type PasswordReset struct {
	ID        uuid.UUID `db:"id"`
	AccountID uuid.UUID `db:"account_id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// LoginAttempt is an append-only audit row, one per authentication try
type LoginAttempt struct {
	ID          uuid.UUID `db:"id"`
	AccountID   uuid.UUID `db:"account_id"`
	Success     bool      `db:"success"`
	AttemptedAt time.Time `db:"attempted_at"`
}
