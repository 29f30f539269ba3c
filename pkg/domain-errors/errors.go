// Package domainerrors defines the coded error type shared by every service
// layer. Services translate infrastructure sentinels into coded errors;
// transport maps codes onto HTTP statuses.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for callers and for the transport layer.
type Code string

const (
	// Ambient codes.
	CodeBadRequest   Code = "BAD_REQUEST"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeValidation   Code = "VALIDATION"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeTimeout      Code = "TIMEOUT"
	CodeInternal     Code = "INTERNAL"

	// Business codes.
	CodeAlreadyRegistered    Code = "ALREADY_REGISTERED"
	CodeNoCredential         Code = "NO_CREDENTIAL"
	CodeLimitOutOfRange      Code = "LIMIT_OUT_OF_RANGE"
	CodeActiveRailsExist     Code = "ACTIVE_RAILS_EXIST"
	CodeInsufficientCapacity Code = "INSUFFICIENT_CAPACITY"
	CodeRailNotActive        Code = "RAIL_NOT_ACTIVE"
	CodeDrawExceedsLimit     Code = "DRAW_EXCEEDS_LIMIT"

	// Gateway codes.
	CodeWalletUnavailable Code = "WALLET_UNAVAILABLE"
	CodeUserRejected      Code = "USER_REJECTED"
	CodeUnconfirmed       Code = "UNCONFIRMED"
	CodeGatewayFailure    Code = "GATEWAY_FAILURE"
)

// Error is a coded domain error. The cause, if any, is wrapped for logs but
// never rendered to clients.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a coded error around a cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// CodeOf extracts the code from err, or CodeInternal if err is not coded.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// IsRetryable reports whether the operation may succeed if retried as-is.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case CodeTimeout, CodeUnconfirmed, CodeWalletUnavailable, CodeGatewayFailure:
		return true
	default:
		return false
	}
}

var httpStatusByCode = map[Code]int{
	CodeBadRequest:   http.StatusBadRequest,
	CodeInvalidInput: http.StatusBadRequest,
	CodeValidation:   http.StatusUnprocessableEntity,
	CodeUnauthorized: http.StatusUnauthorized,
	CodeForbidden:    http.StatusForbidden,
	CodeNotFound:     http.StatusNotFound,
	CodeConflict:     http.StatusConflict,
	CodeTimeout:      http.StatusGatewayTimeout,
	CodeInternal:     http.StatusInternalServerError,

	CodeAlreadyRegistered:    http.StatusConflict,
	CodeNoCredential:         http.StatusForbidden,
	CodeLimitOutOfRange:      http.StatusUnprocessableEntity,
	CodeActiveRailsExist:     http.StatusConflict,
	CodeInsufficientCapacity: http.StatusConflict,
	CodeRailNotActive:        http.StatusConflict,
	CodeDrawExceedsLimit:     http.StatusUnprocessableEntity,

	CodeWalletUnavailable: http.StatusBadGateway,
	CodeUserRejected:      http.StatusConflict,
	CodeUnconfirmed:       http.StatusGatewayTimeout,
	CodeGatewayFailure:    http.StatusBadGateway,
}

// ToHTTPStatus maps an error to the status the transport layer should send.
func ToHTTPStatus(err error) int {
	if status, ok := httpStatusByCode[CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
