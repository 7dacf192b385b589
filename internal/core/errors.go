// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("token invalid")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrInsufficientTier    = errors.New("insufficient subscription tier")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Detail  any    `json:"detail,omitempty"`
	err     error
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.err
}

func NewAppError(code, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

func (e *AppError) WithDetail(detail any) *AppError {
	e.Detail = detail
	return e
}

func (e *AppError) Wrap(err error) *AppError {
	e.err = err
	return e
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func UnauthorizedError(message string) *AppError {
	return NewAppError("UNAUTHORIZED", message, http.StatusUnauthorized).
		Wrap(ErrUnauthorized)
}

func ForbiddenError(message string) *AppError {
	return NewAppError("FORBIDDEN", message, http.StatusForbidden).
		Wrap(ErrForbidden)
}

func DuplicateError(field string) *AppError {
	return NewAppError(
		"DUPLICATE",
		fmt.Sprintf("%s already exists", field),
		http.StatusConflict,
	).Wrap(ErrDuplicateKey)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		"TOKEN_EXPIRED",
		"token has expired",
		http.StatusUnauthorized,
	).Wrap(ErrTokenExpired)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		"TOKEN_INVALID",
		"token is invalid",
		http.StatusUnauthorized,
	).Wrap(ErrTokenInvalid)
}

func TokenRevokedError() *AppError {
	return NewAppError(
		"TOKEN_REVOKED",
		"token has been revoked",
		http.StatusUnauthorized,
	).Wrap(ErrTokenRevoked)
}

// InsufficientTierError maps to HTTP 402: the caller is authenticated but
// their subscription tier is below the feature's minimum.
func InsufficientTierError(currentTier, requiredTier string) *AppError {
	return NewAppError(
		"INSUFFICIENT_TIER",
		fmt.Sprintf(
			"this feature requires %s subscription or higher",
			requiredTier,
		),
		http.StatusPaymentRequired,
	).WithDetail(map[string]string{
		"current_tier":  currentTier,
		"required_tier": requiredTier,
	}).Wrap(ErrInsufficientTier)
}

// UpstreamUnavailableError covers inventory fetch failures: timeouts, error
// statuses and malformed payloads all surface the same way so callers can
// distinguish "no deals matched" from "could not reach inventory".
func UpstreamUnavailableError(source string) *AppError {
	return NewAppError(
		"UPSTREAM_UNAVAILABLE",
		fmt.Sprintf("%s is currently unavailable", source),
		http.StatusBadGateway,
	).Wrap(ErrUpstreamUnavailable)
}
