// Package errors defines the coded domain errors returned by services and
// translated to HTTP responses by the handlers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeInsufficientBalance  = "INSUFFICIENT_BALANCE"
	CodeKycRequired          = "KYC_REQUIRED"
	CodeInvalidWithdrawalKey = "INVALID_WITHDRAWAL_KEY"
	CodeInvalidState         = "INVALID_STATE"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeConflict             = "CONFLICT"
	CodeDependencyFailure    = "DEPENDENCY_FAILURE"
)

// DomainError is a business-rule failure that is safe to show to the caller.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is matches any DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrValidation           = &DomainError{Code: CodeValidation, Message: "validation failed"}
	ErrNotFound             = &DomainError{Code: CodeNotFound, Message: "not found"}
	ErrInsufficientBalance  = &DomainError{Code: CodeInsufficientBalance, Message: "insufficient balance"}
	ErrKycRequired          = &DomainError{Code: CodeKycRequired, Message: "KYC verification required"}
	ErrInvalidWithdrawalKey = &DomainError{Code: CodeInvalidWithdrawalKey, Message: "invalid withdrawal key"}
	ErrInvalidState         = &DomainError{Code: CodeInvalidState, Message: "invalid state"}
	ErrUnauthorized         = &DomainError{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden            = &DomainError{Code: CodeForbidden, Message: "forbidden"}
	ErrConflict             = &DomainError{Code: CodeConflict, Message: "conflict"}
	ErrDependencyFailure    = &DomainError{Code: CodeDependencyFailure, Message: "upstream service unavailable"}
)

func Validation(format string, args ...interface{}) error {
	return &DomainError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(what string) error {
	return &DomainError{Code: CodeNotFound, Message: what + " not found"}
}

func InsufficientBalance(message string) error {
	return &DomainError{Code: CodeInsufficientBalance, Message: message}
}

func InvalidState(format string, args ...interface{}) error {
	return &DomainError{Code: CodeInvalidState, Message: fmt.Sprintf(format, args...)}
}

func Conflict(message string) error {
	return &DomainError{Code: CodeConflict, Message: message}
}

func Unauthorized(message string) error {
	return &DomainError{Code: CodeUnauthorized, Message: message}
}

func Forbidden(message string) error {
	return &DomainError{Code: CodeForbidden, Message: message}
}

// DependencyFailure wraps an error from a payment processor or other
// upstream. The cause is kept for logs but not exposed in Message.
func DependencyFailure(service string, err error) error {
	return &DomainError{Code: CodeDependencyFailure, Message: service + " is unavailable", Err: err}
}

// As extracts the DomainError from err's chain.
func As(err error) (*DomainError, bool) {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HTTPStatus maps an error to the status code the API returns for it.
func HTTPStatus(err error) int {
	de, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch de.Code {
	case CodeValidation, CodeInsufficientBalance:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeKycRequired, CodeInvalidWithdrawalKey, CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeInvalidState, CodeConflict:
		return http.StatusConflict
	case CodeDependencyFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
