package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Authentication & Authorization
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden           ErrorCode = "FORBIDDEN"
	ErrCodeInvalidToken        ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired        ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeAccountInactive     ErrorCode = "ACCOUNT_INACTIVE"
	ErrCodeRefreshTokenInvalid ErrorCode = "REFRESH_TOKEN_INVALID"
	ErrCodeRefreshTokenExpired ErrorCode = "REFRESH_TOKEN_EXPIRED"
	ErrCodeRefreshTokenRevoked ErrorCode = "REFRESH_TOKEN_REVOKED"
	ErrCodeDeviceMismatch      ErrorCode = "DEVICE_MISMATCH"

	// Validation
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED"

	// Resource
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrCodeConflict      ErrorCode = "CONFLICT"

	// Couples & invitations
	ErrCodeInvalidInvitation ErrorCode = "INVALID_INVITATION"
	ErrCodeAlreadyCoupled    ErrorCode = "ALREADY_COUPLED"

	// Mediation pipeline
	ErrCodeSafetyBlocked          ErrorCode = "SAFETY_BLOCKED"
	ErrCodeGenerationFailed       ErrorCode = "GENERATION_FAILED"
	ErrCodeAlreadyAnalyzed        ErrorCode = "ALREADY_ANALYZED"
	ErrCodePerspectivesIncomplete ErrorCode = "PERSPECTIVES_INCOMPLETE"

	// Rate Limiting
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabase ErrorCode = "DATABASE_ERROR"
	ErrCodeExternal ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// AppError is a structured error that can be returned to clients
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message)
}

func InvalidToken(message string) *AppError {
	return New(ErrCodeInvalidToken, message)
}

func InvalidCredentials() *AppError {
	return New(ErrCodeInvalidCredentials, "Incorrect email or password")
}

func AccountInactive() *AppError {
	return New(ErrCodeAccountInactive, "User account is inactive")
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func AlreadyExists(resource string) *AppError {
	return New(ErrCodeAlreadyExists, fmt.Sprintf("%s already exists", resource))
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func InvalidInput(field string, reason string) *AppError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid %s: %s", field, reason))
}

func MissingRequired(field string) *AppError {
	return New(ErrCodeMissingRequired, fmt.Sprintf("%s is required", field))
}

func InvalidInvitation() *AppError {
	return New(ErrCodeInvalidInvitation, "Invalid or expired invitation code")
}

func AlreadyCoupled() *AppError {
	return New(ErrCodeAlreadyCoupled, "User already belongs to an active couple")
}

// SafetyBlocked carries the classifier's user-facing message. Callers attach
// crisis resources via WithDetails so clients can render them directly.
func SafetyBlocked(message string) *AppError {
	return New(ErrCodeSafetyBlocked, message)
}

func GenerationFailed(cause error) *AppError {
	return Wrap(ErrCodeGenerationFailed, "AI mediation failed", cause)
}

func AlreadyAnalyzed() *AppError {
	return New(ErrCodeAlreadyAnalyzed, "AI analysis already exists for this argument")
}

func PerspectivesIncomplete() *AppError {
	return New(ErrCodePerspectivesIncomplete, "Both perspectives must be submitted before AI analysis")
}

func RateLimitExceeded() *AppError {
	return New(ErrCodeRateLimitExceeded, "Rate limit exceeded")
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func Database(cause error) *AppError {
	return Wrap(ErrCodeDatabase, "Database error", cause)
}

func External(service string, cause error) *AppError {
	return Wrap(ErrCodeExternal, fmt.Sprintf("External service error: %s", service), cause)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsRefreshTokenError reports whether the code is one of the refresh-token
// failure reasons. Externally these all collapse to 401; internally the
// specific reason is logged for reuse detection.
func IsRefreshTokenError(code ErrorCode) bool {
	switch code {
	case ErrCodeRefreshTokenInvalid, ErrCodeRefreshTokenExpired,
		ErrCodeRefreshTokenRevoked, ErrCodeDeviceMismatch:
		return true
	}
	return false
}
