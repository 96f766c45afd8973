package auth

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the minimum accepted password length
const MinPasswordLength = 8

// Violation is one field-level validation failure. Validation failures
// are reported as a list of violations, distinct from domain errors.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RegisterRequest is the registration request payload
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,password_complexity"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
}

// LoginRequest is the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the token refresh request payload
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ForgotPasswordRequest is the forgot-password request payload
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the reset-password request payload; the reset
// token itself arrives as a query parameter
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,password_complexity"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report violations under the json field name
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("password_complexity", passwordComplexity)
}

// passwordComplexity requires length >= 8 with upper, lower, digit and
// special characters present
func passwordComplexity(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < MinPasswordLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasDigit && hasSpecial
}

// ValidateRequest validates a request payload and returns field-level
// violations (empty if the payload is valid)
func ValidateRequest(req interface{}) []Violation {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Violation{{Field: "request", Message: "invalid request payload"}}
	}

	violations := make([]Violation, 0, len(validationErrors))
	for _, fe := range validationErrors {
		violations = append(violations, Violation{
			Field:   fe.Field(),
			Message: violationMessage(fe),
		})
	}

	return violations
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must not exceed " + fe.Param() + " characters"
	case "password_complexity":
		return "password must be at least 8 characters with uppercase, lowercase, number and special characters"
	default:
		return "is invalid"
	}
}
