package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Refresh token repository errors
var (
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)

// RefreshTokenRepository persists issued refresh tokens. Records are never
// updated or deleted; a new row supersedes older ones by creation time.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *RefreshToken) error
	GetLatestByAccountID(ctx context.Context, accountID uuid.UUID) (*RefreshToken, error)
}

// refreshTokenRepository implements RefreshTokenRepository using PostgreSQL
type refreshTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenRepository creates a new RefreshTokenRepository instance
func NewRefreshTokenRepository(pool *pgxpool.Pool) RefreshTokenRepository {
	return &refreshTokenRepository{pool: pool}
}

// Create inserts a new refresh token row
func (r *refreshTokenRepository) Create(ctx context.Context, token *RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (account_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	return r.pool.QueryRow(ctx, query,
		token.AccountID,
		token.Token,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
}

// GetLatestByAccountID fetches the most recently created refresh token row
// for an account. Older rows for the same account are ignored.
func (r *refreshTokenRepository) GetLatestByAccountID(ctx context.Context, accountID uuid.UUID) (*RefreshToken, error) {
	query := `
		SELECT id, account_id, token, expires_at, created_at
		FROM refresh_tokens
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	token := &RefreshToken{}
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&token.ID,
		&token.AccountID,
		&token.Token,
		&token.ExpiresAt,
		&token.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}

	return token, nil
}
