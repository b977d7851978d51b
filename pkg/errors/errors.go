package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrEngineFailure
	ErrEngineMisconfigured
	ErrMalformedOutput
	ErrArtifactGeneration
	ErrArtifactUnavailable
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// StatusCode maps the error code to an HTTP status
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// EngineFailure covers a non-zero exit from the analysis engine; the
// captured stderr travels in the wrapped error.
func EngineFailure(stderr string, err error) *AppError {
	return &AppError{
		Code:    ErrEngineFailure,
		Message: "audio analysis failed on the server",
		Err:     fmt.Errorf("engine stderr: %s: %w", stderr, err),
	}
}

// EngineMisconfigured covers a missing runtime dependency on the host
// running the analysis engine.
func EngineMisconfigured(stderr string, err error) *AppError {
	return &AppError{
		Code:    ErrEngineMisconfigured,
		Message: "required analysis dependencies are not installed on the server",
		Err:     fmt.Errorf("engine stderr: %s: %w", stderr, err),
	}
}

func MalformedOutput(err error) *AppError {
	return &AppError{
		Code:    ErrMalformedOutput,
		Message: "failed to parse analysis output",
		Err:     err,
	}
}

func ArtifactGeneration(err error) *AppError {
	return &AppError{
		Code:    ErrArtifactGeneration,
		Message: "failed to generate report document",
		Err:     err,
	}
}

func ArtifactUnavailable(err error) *AppError {
	return &AppError{
		Code:    ErrArtifactUnavailable,
		Message: "report document unavailable",
		Err:     err,
	}
}

// Code extracts the ErrorCode from an error chain, or ErrInternal when the
// error is not an AppError.
func Code(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Status extracts the HTTP status from an error chain.
func Status(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode()
	}
	return http.StatusInternalServerError
}

// Message extracts the user-facing message from an error chain.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return Code(err) == code
}
