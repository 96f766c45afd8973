package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// LoginAttemptRepository appends audit rows for authentication attempts.
// The log is append-only: rows are never updated or deleted.
type LoginAttemptRepository interface {
	Create(ctx context.Context, attempt *LoginAttempt) error
	CountByAccountID(ctx context.Context, accountID uuid.UUID, success bool) (int, error)
}

// loginAttemptRepository implements LoginAttemptRepository using PostgreSQL
type loginAttemptRepository struct {
	db *sqlx.DB
}

// NewLoginAttemptRepository creates a new LoginAttemptRepository instance
func NewLoginAttemptRepository(db *sqlx.DB) LoginAttemptRepository {
	return &loginAttemptRepository{db: db}
}

// Create appends one audit row
func (r *loginAttemptRepository) Create(ctx context.Context, attempt *LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (account_id, success)
		VALUES ($1, $2)
		RETURNING id, attempted_at
	`

	return r.db.QueryRowxContext(ctx, query,
		attempt.AccountID,
		attempt.Success,
	).Scan(&attempt.ID, &attempt.AttemptedAt)
}

// CountByAccountID counts recorded attempts for an account by outcome
func (r *loginAttemptRepository) CountByAccountID(ctx context.Context, accountID uuid.UUID, success bool) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM login_attempts
		WHERE account_id = $1 AND success = $2
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, accountID, success); err != nil {
		return 0, err
	}

	return count, nil
}
