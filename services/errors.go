package services

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorCode classifies a business-rule failure so controllers can map it to
// an HTTP status without inspecting message text.
type ErrorCode string

const (
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeOwnership          ErrorCode = "OWNERSHIP_ERROR"
	ErrCodeIneligible         ErrorCode = "INELIGIBLE_COMPLETION"
	ErrCodeAlreadyEnrolled    ErrorCode = "ALREADY_ENROLLED"
	ErrCodeEmptyPath          ErrorCode = "CANNOT_PUBLISH_EMPTY_PATH"
	ErrCodeIncompleteReorder  ErrorCode = "REJECTED_INCOMPLETE_REORDER"
	ErrCodeConcurrency        ErrorCode = "CONCURRENCY_CONFLICT"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// Error is the typed failure returned by every service operation.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewError builds a typed service error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf builds a typed service error with a formatted message.
func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the error code, or ErrCodeInternal for untyped errors.
func CodeOf(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// HTTPStatus maps a service error onto the response status used by the
// controllers.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case ErrCodeValidation, ErrCodeEmptyPath, ErrCodeIncompleteReorder:
		return fiber.StatusBadRequest
	case ErrCodeNotFound:
		return fiber.StatusNotFound
	case ErrCodeOwnership:
		return fiber.StatusForbidden
	case ErrCodeIneligible:
		return fiber.StatusUnprocessableEntity
	case ErrCodeAlreadyEnrolled, ErrCodeConcurrency:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
