package utils

import (
	"errors"
	"net/http"
)

// ErrorKind classifies failures coming out of the service layer.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindValidation
	KindInvalidOperation
	KindUnauthorized
	KindForbidden
	KindDependencyFailure
)

const (
	ErrCodeInvalidPayload    = "invalid_payload"
	ErrCodeValidation        = "validation_error"
	ErrCodeUnauthorized      = "unauthorized"
	ErrCodeForbidden         = "forbidden"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidOperation  = "invalid_operation"
	ErrCodeWrongStatus       = "wrong_status"
	ErrCodeAlreadyExists     = "already_exists"
	ErrCodeAlreadyPaid       = "already_paid"
	ErrCodeInvalidSignature  = "invalid_signature"
	ErrCodeMissingFields     = "missing_fields"
	ErrCodeDependencyFailure = "external_service_failure"
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeInternal          = "internal_server_error"
)

// AppError carries a kind, a stable code and a public message from services to controllers.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: ErrCodeNotFound, Message: message}
}

func Validation(message string, err error) *AppError {
	return &AppError{Kind: KindValidation, Code: ErrCodeValidation, Message: message, Err: err}
}

func InvalidOperation(code, message string) *AppError {
	if code == "" {
		code = ErrCodeInvalidOperation
	}
	return &AppError{Kind: KindInvalidOperation, Code: code, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Code: ErrCodeUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Code: ErrCodeForbidden, Message: message}
}

func DependencyFailure(message string, err error) *AppError {
	return &AppError{Kind: KindDependencyFailure, Code: ErrCodeDependencyFailure, Message: message, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain, KindInternal otherwise.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf returns the code of the first AppError in err's chain.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

func StatusFor(kind ErrorKind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindInvalidOperation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
