package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	ErrPersistence          = errors.New("persistence failure")
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrSchemaValidation     = errors.New("upstream response failed validation")
	ErrManualActionRequired = errors.New("manual action required on platform")
	ErrRateLimit            = errors.New("rate limit exceeded")
	ErrAuthentication       = errors.New("authentication failed")
	ErrNoConnections        = errors.New("no platform connections")
	ErrUnchanged            = errors.New("precondition not met, nothing changed")
)

// AppError carries a machine-readable code alongside the wrapped sentinel.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Persistence(msg string, err error) *AppError {
	return &AppError{Code: "PERSISTENCE", Message: msg, Err: errors.Join(ErrPersistence, err)}
}

func NotFound(msg string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: msg, Err: ErrNotFound}
}

func InvalidSignature(msg string) *AppError {
	return &AppError{Code: "INVALID_SIGNATURE", Message: msg, Err: ErrInvalidSignature}
}

func SchemaValidation(msg string) *AppError {
	return &AppError{Code: "SCHEMA_VALIDATION", Message: msg, Err: ErrSchemaValidation}
}

func ManualActionRequired(platform string) *AppError {
	return &AppError{
		Code:    "MANUAL_ACTION_REQUIRED",
		Message: fmt.Sprintf("%s does not allow programmatic writes, complete this action in the %s app", platform, platform),
		Err:     ErrManualActionRequired,
	}
}

func RateLimit(msg string) *AppError {
	return &AppError{Code: "RATE_LIMIT", Message: msg, Err: ErrRateLimit}
}

func Authentication(msg string) *AppError {
	return &AppError{Code: "AUTHENTICATION", Message: msg, Err: ErrAuthentication}
}

func NoConnections(msg string) *AppError {
	return &AppError{Code: "NO_CONNECTIONS", Message: msg, Err: ErrNoConnections}
}

func Unchanged(msg string) *AppError {
	return &AppError{Code: "UNCHANGED", Message: msg, Err: ErrUnchanged}
}
