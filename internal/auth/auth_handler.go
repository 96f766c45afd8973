package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	appctx "github.com/houseofllm/user-management/internal/context"
)

const CodeValidationError = "VALIDATION_ERROR"

// APIResponse represents the standard API response format
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// APIError represents the error detail in API response
type APIError struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

// MessageResponse carries a human-readable outcome message
type MessageResponse struct {
	Message string `json:"message"`
}

// Handler handles HTTP requests for the authentication endpoints
type Handler struct {
	service *AuthService
	logger  *slog.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(service *AuthService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register handles POST /api/v1/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, CodeValidationError, "Invalid request body", nil)
		return
	}

	if violations := ValidateRequest(req); len(violations) > 0 {
		h.writeViolations(w, violations)
		return
	}

	created, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeSuccess(w, http.StatusCreated, created)
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, CodeValidationError, "Invalid request body", nil)
		return
	}

	if violations := ValidateRequest(req); len(violations) > 0 {
		h.writeViolations(w, violations)
		return
	}

	pair, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeSuccess(w, http.StatusOK, pair)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, CodeValidationError, "Invalid request body", nil)
		return
	}

	if violations := ValidateRequest(req); len(violations) > 0 {
		h.writeViolations(w, violations)
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeSuccess(w, http.StatusOK, pair)
}

// Me handles GET /api/v1/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	accountID, ok := appctx.ExtractAccountID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, ErrInvalidRefreshToken.Code, "Invalid or expired token", nil)
		return
	}

	view, err := h.service.CurrentUser(r.Context(), accountID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeSuccess(w, http.StatusOK, view)
}

// ForgotPassword handles POST /api/v1/auth/forgot-password
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, CodeValidationError, "Invalid request body", nil)
		return
	}

	if violations := ValidateRequest(req); len(violations) > 0 {
		h.writeViolations(w, violations)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeSuccess(w, http.StatusOK, MessageResponse{
		Message: "Password reset token has been sent to " + req.Email,
	})
}

// ResetPassword handles POST /api/v1/auth/reset-password?token=...
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	resetToken := r.URL.Query().Get("token")
	if resetToken == "" {
		h.writeError(w, ErrInvalidResetURL.Status, ErrInvalidResetURL.Code, ErrInvalidResetURL.Message, nil)
		return
	}

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, CodeValidationError, "Invalid request body", nil)
		return
	}

	if violations := ValidateRequest(req); len(violations) > 0 {
		h.writeViolations(w, violations)
		return
	}

	if err := h.service.ResetPassword(r.Context(), resetToken, req.NewPassword); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeSuccess(w, http.StatusOK, MessageResponse{Message: "Password reset successful"})
}

// writeServiceError maps service errors to HTTP responses
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		h.writeError(w, svcErr.Status, svcErr.Code, svcErr.Message, nil)
		return
	}
	h.logger.Error("Unexpected service error", "error", err)
	h.writeError(w, ErrUnknown.Status, ErrUnknown.Code, ErrUnknown.Message, nil)
}

// writeViolations writes a 400 response carrying per-field messages
func (h *Handler) writeViolations(w http.ResponseWriter, violations []Violation) {
	details := make(map[string][]string, len(violations))
	for _, v := range violations {
		details[v.Field] = append(details[v.Field], v.Message)
	}
	h.writeError(w, http.StatusBadRequest, CodeValidationError, "Request validation failed", details)
}

// writeSuccess writes a successful JSON response
func (h *Handler) writeSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	json.NewEncoder(w).Encode(response)
}

// writeError writes an error JSON response
func (h *Handler) writeError(w http.ResponseWriter, statusCode int, code, message string, details map[string][]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now().UTC(),
	}

	json.NewEncoder(w).Encode(response)
}
