package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Password reset repository errors
var (
	ErrPasswordResetNotFound = errors.New("password reset not found")
)

// PasswordResetRepository persists password-reset requests. Rows are
// append-only; only the most recent row per account is consulted.
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *PasswordReset) error
	GetLatestByAccountID(ctx context.Context, accountID uuid.UUID) (*PasswordReset, error)
}

// passwordResetRepository implements PasswordResetRepository using PostgreSQL
type passwordResetRepository struct {
	pool *pgxpool.Pool
}

// NewPasswordResetRepository creates a new PasswordResetRepository instance
func NewPasswordResetRepository(pool *pgxpool.Pool) PasswordResetRepository {
	return &passwordResetRepository{pool: pool}
}

// Create inserts a new password-reset row
func (r *passwordResetRepository) Create(ctx context.Context, reset *PasswordReset) error {
	query := `
		INSERT INTO password_resets (account_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	return r.pool.QueryRow(ctx, query,
		reset.AccountID,
		reset.Token,
		reset.ExpiresAt,
	).Scan(&reset.ID, &reset.CreatedAt)
}

// GetLatestByAccountID fetches the most recently created reset row for an account
func (r *passwordResetRepository) GetLatestByAccountID(ctx context.Context, accountID uuid.UUID) (*PasswordReset, error) {
	query := `
		SELECT id, account_id, token, expires_at, created_at
		FROM password_resets
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	reset := &PasswordReset{}
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&reset.ID,
		&reset.AccountID,
		&reset.Token,
		&reset.ExpiresAt,
		&reset.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPasswordResetNotFound
		}
		return nil, err
	}

	return reset, nil
}
