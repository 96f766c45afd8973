package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/houseofllm/user-management/internal/mailer"
	"github.com/houseofllm/user-management/internal/metrics"
	"github.com/houseofllm/user-management/internal/repository"
)

// UpdatePasswordFunc hashes and persists a new password for an account
type UpdatePasswordFunc func(ctx context.Context, accountID uuid.UUID, newPassword string) error

// PasswordResetFlow drives one reset cycle: issue and persist a reset
// token, dispatch the email, and later validate a presented token and
// apply the password update. Consumption is implicit: once the password
// changes there is no consumed flag on the record, so an unexpired token
// that still matches the latest record can be replayed.
type PasswordResetFlow struct {
	codec  *TokenCodec
	resets repository.PasswordResetRepository
	mailer mailer.Mailer
	ttl    time.Duration
	logger *slog.Logger
}

// NewPasswordResetFlow creates a new PasswordResetFlow instance
func NewPasswordResetFlow(
	codec *TokenCodec,
	resets repository.PasswordResetRepository,
	m mailer.Mailer,
	ttl time.Duration,
	logger *slog.Logger,
) *PasswordResetFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &PasswordResetFlow{
		codec:  codec,
		resets: resets,
		mailer: m,
		ttl:    ttl,
		logger: logger,
	}
}

// RequestReset issues a reset token for the account, persists it and
// dispatches the reset email. A persist failure aborts the flow; an
// email failure does not roll back the persisted token — the record
// stays valid and a retry will simply supersede it.
func (f *PasswordResetFlow) RequestReset(ctx context.Context, account *repository.Account) error {
	token, err := f.codec.IssueReset(account.ID.String(), f.ttl)
	if err != nil {
		f.logger.Error("failed to issue reset token", "account_id", account.ID, "error", err)
		return ErrUnknown
	}

	record := &repository.PasswordReset{
		AccountID: account.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(f.ttl),
	}

	if err := f.resets.Create(ctx, record); err != nil {
		f.logger.Error("unable to persist password reset token", "account_id", account.ID, "error", err)
		metrics.PasswordResetsTotal.WithLabelValues("request", "failure").Inc()
		return ErrUnableToPersist
	}

	f.logger.Info("persisted password reset token", "account_id", account.ID)

	if err := f.mailer.SendPasswordReset(ctx, account.Email, token); err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("request", "failure").Inc()
		return ErrEmailDeliveryFailed
	}

	metrics.PasswordResetsTotal.WithLabelValues("request", "success").Inc()
	return nil
}

// ValidateAndConsume checks the presented token against the most recent
// stored record for the account and, on an exact match, applies the
// password update. The stored expiry is checked in addition to the
// token's own exp claim so records can be invalidated early.
func (f *PasswordResetFlow) ValidateAndConsume(ctx context.Context, accountID uuid.UUID, presented, newPassword string, update UpdatePasswordFunc) error {
	record, err := f.resets.GetLatestByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrPasswordResetNotFound) {
			f.logger.Warn("no password reset on record", "account_id", accountID)
			metrics.PasswordResetsTotal.WithLabelValues("consume", "failure").Inc()
			return ErrInvalidResetURL
		}
		f.logger.Error("password reset lookup failed", "account_id", accountID, "error", err)
		metrics.PasswordResetsTotal.WithLabelValues("consume", "failure").Inc()
		return ErrInvalidResetURL
	}

	if record.Token != presented {
		f.logger.Warn("password reset token mismatch", "account_id", accountID)
		metrics.PasswordResetsTotal.WithLabelValues("consume", "failure").Inc()
		return ErrInvalidResetURL
	}

	if time.Now().After(record.ExpiresAt) {
		f.logger.Warn("password reset record expired", "account_id", accountID)
		metrics.PasswordResetsTotal.WithLabelValues("consume", "failure").Inc()
		return ErrInvalidResetURL
	}

	if err := update(ctx, accountID, newPassword); err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("consume", "failure").Inc()
		return err
	}

	f.logger.Info("password reset applied", "account_id", accountID)
	metrics.PasswordResetsTotal.WithLabelValues("consume", "success").Inc()
	return nil
}
