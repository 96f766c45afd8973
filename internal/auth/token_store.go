package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/houseofllm/user-management/internal/repository"
)

// RefreshTokenStore owns the single-most-recent-token-wins invariant.
// Issuing a token inserts a new row; the previous row is never deleted,
// it simply stops being the most recent one. Validation consults only
// the latest row and compares the presented token against the stored
// string exactly. Tokens are stored in plaintext, not hashed at rest.
type RefreshTokenStore struct {
	repo   repository.RefreshTokenRepository
	logger *slog.Logger
}

// NewRefreshTokenStore creates a new RefreshTokenStore instance
func NewRefreshTokenStore(repo repository.RefreshTokenRepository, logger *slog.Logger) *RefreshTokenStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshTokenStore{repo: repo, logger: logger}
}

// Persist stores a newly issued refresh token for the account
func (s *RefreshTokenStore) Persist(ctx context.Context, accountID uuid.UUID, token string, expiresAt time.Time) error {
	record := &repository.RefreshToken{
		AccountID: accountID,
		Token:     token,
		ExpiresAt: expiresAt,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("unable to persist refresh token", "account_id", accountID, "error", err)
		return ErrUnableToPersist
	}

	s.logger.Info("persisted refresh token details", "account_id", accountID)
	return nil
}

// Validate checks the presented token against the most recently created
// record for the account. A missing record or a string mismatch yields
// ErrInvalidRefreshToken; a stale record yields ErrRefreshTokenExpired.
// The store-level expiry check is intentionally redundant with the
// signed exp claim: it allows records to be invalidated on a shorter
// window than the token lifetime.
func (s *RefreshTokenStore) Validate(ctx context.Context, accountID uuid.UUID, presented string) error {
	record, err := s.repo.GetLatestByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			s.logger.Warn("no refresh token on record", "account_id", accountID)
			return ErrInvalidRefreshToken
		}
		s.logger.Error("refresh token lookup failed", "account_id", accountID, "error", err)
		return ErrInvalidRefreshToken
	}

	if record.Token != presented {
		s.logger.Warn("refresh token mismatch", "account_id", accountID)
		return ErrInvalidRefreshToken
	}

	if time.Now().After(record.ExpiresAt) {
		s.logger.Warn("refresh token expired", "account_id", accountID)
		return ErrRefreshTokenExpired
	}

	return nil
}
