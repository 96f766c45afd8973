package auth

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/houseofllm/user-management/internal/metrics"
	"github.com/houseofllm/user-management/internal/repository"
)

// LoginAttemptRecorder appends one audit row per authentication attempt,
// successful or not. A failed write surfaces ErrUnableToPersist, but the
// login flow treats it as a logged side-effect failure rather than a
// reason to abort an otherwise valid outcome.
type LoginAttemptRecorder struct {
	repo   repository.LoginAttemptRepository
	logger *slog.Logger
}

// NewLoginAttemptRecorder creates a new LoginAttemptRecorder instance
func NewLoginAttemptRecorder(repo repository.LoginAttemptRepository, logger *slog.Logger) *LoginAttemptRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginAttemptRecorder{repo: repo, logger: logger}
}

// Record appends one attempt row
func (r *LoginAttemptRecorder) Record(ctx context.Context, accountID uuid.UUID, success bool) error {
	attempt := &repository.LoginAttempt{
		AccountID: accountID,
		Success:   success,
	}

	if err := r.repo.Create(ctx, attempt); err != nil {
		r.logger.Error("unable to persist login attempt", "account_id", accountID, "error", err)
		return ErrUnableToPersist
	}

	result := "failure"
	if success {
		result = "success"
	}
	metrics.LoginAttemptsTotal.WithLabelValues(result).Inc()

	r.logger.Info("persisted login attempt", "account_id", accountID, "success", success)
	return nil
}
