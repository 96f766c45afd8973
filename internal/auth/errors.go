package auth

import "net/http"

// Error is a domain error with a stable API code and HTTP status.
// Every failure a caller can observe maps to exactly one of the
// sentinel values below; storage-layer detail never leaks through.
type Error struct {
	Code    string
	Status  int
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Domain error kinds
var (
	ErrAccountAlreadyExists = &Error{
		Code:    "ACCOUNT_ALREADY_EXISTS",
		Status:  http.StatusConflict,
		Message: "Account already exists for email",
	}
	ErrAccountDoesNotExist = &Error{
		Code:    "ACCOUNT_NOT_FOUND",
		Status:  http.StatusConflict,
		Message: "Account does not exist",
	}
	ErrInvalidCredentials = &Error{
		Code:    "INVALID_CREDENTIALS",
		Status:  http.StatusConflict,
		Message: "Email/Password is invalid",
	}
	ErrInvalidRefreshToken = &Error{
		Code:    "INVALID_TOKEN",
		Status:  http.StatusUnauthorized,
		Message: "Invalid refresh token",
	}
	ErrRefreshTokenExpired = &Error{
		Code:    "TOKEN_EXPIRED",
		Status:  http.StatusUnauthorized,
		Message: "Refresh token has expired",
	}
	ErrInvalidResetURL = &Error{
		Code:    "INVALID_TOKEN",
		Status:  http.StatusBadRequest,
		Message: "Invalid password reset url",
	}
	ErrUnableToPersist = &Error{
		Code:    "PERSISTENCE_FAILED",
		Status:  http.StatusConflict,
		Message: "Unable to persist details",
	}
	ErrEmailDeliveryFailed = &Error{
		Code:    "EMAIL_DELIVERY_FAILED",
		Status:  http.StatusConflict,
		Message: "Email delivery failed",
	}
	ErrRegistrationFailed = &Error{
		Code:    "UNKNOWN_ERROR",
		Status:  http.StatusInternalServerError,
		Message: "Registration failed",
	}
	ErrUnknown = &Error{
		Code:    "UNKNOWN_ERROR",
		Status:  http.StatusInternalServerError,
		Message: "An unexpected error occurred",
	}
)
