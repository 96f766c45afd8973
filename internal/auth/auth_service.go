package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/houseofllm/user-management/internal/metrics"
	"github.com/houseofllm/user-management/internal/repository"
)

// RegistrationResponse echoes the public registration fields
type RegistrationResponse struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// TokenPairResponse carries an issued access/refresh pair. ExpiresIn is
// the access token lifetime in seconds.
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// AccountView is the public projection of an account (no password hash)
type AccountView struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Status      string     `json:"status"`
	Roles       []string   `json:"roles"`
	Quota       string     `json:"quota"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// AuthService composes the hasher, codec, stores and recorder into the
// register / login / refresh / current-user / forgot-password /
// reset-password use cases. It is the only component with business-level
// error semantics: everything it returns is a domain *Error.
type AuthService struct {
	accounts   repository.AccountRepository
	tokenStore *RefreshTokenStore
	resetFlow  *PasswordResetFlow
	recorder   *LoginAttemptRecorder
	hasher     *PasswordHasher
	codec      *TokenCodec
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *slog.Logger
}

// AuthServiceConfig holds token lifetimes for the orchestrator
type AuthServiceConfig struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// NewAuthService creates a new AuthService instance
func NewAuthService(
	accounts repository.AccountRepository,
	tokenStore *RefreshTokenStore,
	resetFlow *PasswordResetFlow,
	recorder *LoginAttemptRecorder,
	hasher *PasswordHasher,
	codec *TokenCodec,
	cfg AuthServiceConfig,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		accounts:   accounts,
		tokenStore: tokenStore,
		resetFlow:  resetFlow,
		recorder:   recorder,
		hasher:     hasher,
		codec:      codec,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		logger:     logger,
	}
}

// Register creates a new account with the default role. A duplicate
// email yields ErrAccountAlreadyExists; any other persistence failure
// yields ErrRegistrationFailed.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegistrationResponse, error) {
	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("password hashing failed", "error", err)
		return nil, ErrRegistrationFailed
	}

	account := &repository.Account{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Status:       repository.StatusActive,
		Roles:        []string{repository.RoleUser},
		Quota:        repository.DefaultQuota,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrEmailAlreadyExists) {
			s.logger.Warn("account already exists", "email", account.Email)
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			return nil, ErrAccountAlreadyExists
		}
		s.logger.Error("unable to create account", "email", account.Email, "error", err)
		metrics.RegistrationsTotal.WithLabelValues("failure").Inc()
		return nil, ErrRegistrationFailed
	}

	s.logger.Info("successfully created account", "email", account.Email)
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()

	return &RegistrationResponse{
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
	}, nil
}

// Login authenticates by email and password and issues a token pair.
// The attempt is recorded after verification, before the caller observes
// the outcome; an audit write failure is logged but does not abort an
// otherwise valid login.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenPairResponse, error) {
	account, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			s.logger.Warn("login for unknown account", "email", req.Email)
			return nil, ErrAccountDoesNotExist
		}
		s.logger.Error("account lookup failed", "email", req.Email, "error", err)
		return nil, ErrUnknown
	}

	valid := s.hasher.Verify(req.Password, account.PasswordHash)

	if err := s.recorder.Record(ctx, account.ID, valid); err != nil {
		// Audit is a side effect; the login outcome stands
		s.logger.Warn("login attempt audit failed", "account_id", account.ID, "error", err)
	}

	if !valid {
		s.logger.Warn("invalid login credentials", "account_id", account.ID)
		return nil, ErrInvalidCredentials
	}

	if err := s.accounts.UpdateLastLogin(ctx, account.ID); err != nil {
		s.logger.Warn("failed to update last login", "account_id", account.ID, "error", err)
	}

	return s.issueTokenPair(ctx, account)
}

// Refresh exchanges a valid refresh token for a new access/refresh pair.
// The presented token must exactly match the most recently stored record
// for the account; the old record is superseded by recency, not deleted.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPairResponse, error) {
	accountID, err := s.codec.ParseSubject(refreshToken, RefreshTokenKind)
	if err != nil {
		s.logger.Warn("failed to parse refresh token", "error", err)
		metrics.TokenRefreshesTotal.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidRefreshToken
	}

	if err := s.tokenStore.Validate(ctx, accountID, refreshToken); err != nil {
		if errors.Is(err, ErrRefreshTokenExpired) {
			metrics.TokenRefreshesTotal.WithLabelValues("expired").Inc()
			return nil, ErrRefreshTokenExpired
		}
		metrics.TokenRefreshesTotal.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidRefreshToken
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		s.logger.Error("account lookup failed during refresh", "account_id", accountID, "error", err)
		metrics.TokenRefreshesTotal.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidRefreshToken
	}

	pair, err := s.issueTokenPair(ctx, account)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	return pair, nil
}

// CurrentUser loads the account behind a verified access-token subject
// and projects it to the public view
func (s *AuthService) CurrentUser(ctx context.Context, accountID string) (*AccountView, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, ErrAccountDoesNotExist
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountDoesNotExist
		}
		s.logger.Error("account lookup failed", "account_id", accountID, "error", err)
		return nil, ErrUnknown
	}

	return &AccountView{
		ID:          account.ID.String(),
		Email:       account.Email,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		Status:      account.Status,
		Roles:       account.Roles,
		Quota:       account.Quota,
		CreatedAt:   account.CreatedAt,
		LastLoginAt: account.LastLoginAt,
	}, nil
}

// ForgotPassword starts a reset cycle for the account behind the email
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			s.logger.Warn("forgot-password for unknown account", "email", email)
			return ErrAccountDoesNotExist
		}
		s.logger.Error("account lookup failed", "email", email, "error", err)
		return ErrUnknown
	}

	return s.resetFlow.RequestReset(ctx, account)
}

// ResetPassword validates a presented reset token and applies the new
// password. The account id comes from the token's own subject claim.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	accountID, err := s.codec.ParseSubject(resetToken, ResetTokenKind)
	if err != nil {
		s.logger.Warn("failed to parse reset token", "error", err)
		return ErrInvalidResetURL
	}

	return s.resetFlow.ValidateAndConsume(ctx, accountID, resetToken, newPassword, s.hashAndUpdatePassword)
}

// hashAndUpdatePassword is the update function handed to the reset flow
func (s *AuthService) hashAndUpdatePassword(ctx context.Context, accountID uuid.UUID, newPassword string) error {
	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.logger.Error("password hashing failed", "account_id", accountID, "error", err)
		return ErrUnknown
	}

	if err := s.accounts.UpdatePassword(ctx, accountID, passwordHash); err != nil {
		s.logger.Error("unable to update password", "account_id", accountID, "error", err)
		return ErrUnableToPersist
	}

	return nil
}

// issueTokenPair issues and persists a fresh access/refresh pair for the
// account. The refresh record is persisted before the pair is returned,
// so a cancelled caller can at worst leave a valid but unreturned token
// behind — idempotent on the next refresh.
func (s *AuthService) issueTokenPair(ctx context.Context, account *repository.Account) (*TokenPairResponse, error) {
	accessToken, err := s.codec.IssueAccess(account.ID.String(), account.Roles, s.accessTTL)
	if err != nil {
		s.logger.Error("failed to issue access token", "account_id", account.ID, "error", err)
		return nil, ErrUnknown
	}

	refreshToken, err := s.codec.IssueRefresh(account.ID.String(), account.Roles, s.refreshTTL)
	if err != nil {
		s.logger.Error("failed to issue refresh token", "account_id", account.ID, "error", err)
		return nil, ErrUnknown
	}

	if err := s.tokenStore.Persist(ctx, account.ID, refreshToken, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, err
	}

	return &TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}
