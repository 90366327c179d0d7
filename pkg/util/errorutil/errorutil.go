package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an application error.
type Kind int

const (
	KindFault Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFoundError"
	case KindConflict:
		return "ConflictError"
	case KindUnauthorized:
		return "AuthenticationError"
	case KindForbidden:
		return "AuthorizationError"
	default:
		return "Fault"
	}
}

type classification struct {
	status  int
	message string
}

var classifications = map[Kind]classification{
	KindValidation:   {http.StatusBadRequest, "The request was invalid. Please check your input and try again."},
	KindNotFound:     {http.StatusNotFound, "The requested resource was not found."},
	KindConflict:     {http.StatusBadRequest, "The request was invalid. Please check your input and try again."},
	KindUnauthorized: {http.StatusUnauthorized, "You are not authorized to access this resource."},
	KindForbidden:    {http.StatusForbidden, "You do not have permission to access this resource."},
	KindFault:        {http.StatusInternalServerError, "An internal server error occurred. Please contact support if the issue persists."},
}

// Classify returns the HTTP status and generic user-facing message for a kind.
func Classify(kind Kind) (int, string) {
	c, ok := classifications[kind]
	if !ok {
		c = classifications[KindFault]
	}
	return c.status, c.message
}

// FieldViolation describes a single invalid input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError standardizes application errors.
type AppError struct {
	Code       string
	Kind       Kind
	Message    string
	HTTPStatus int
	Violations []FieldViolation
	Err        error
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

// IsFault reports whether the error is an unanticipated failure.
func (e *AppError) IsFault() bool {
	return e.Kind == KindFault
}

// NewAppError constructs an AppError, filling status and message from the classification table.
func NewAppError(kind Kind, code, message string) *AppError {
	status, generic := Classify(kind)
	if message == "" {
		message = generic
	}
	return &AppError{Code: code, Kind: kind, Message: message, HTTPStatus: status}
}

func NewValidationError(message string, violations []FieldViolation) error {
	e := NewAppError(KindValidation, "VALIDATION_FAILED", message)
	e.Violations = violations
	return e
}

func NewNotFound(resource string, id any) error {
	return NewAppError(KindNotFound, "NOT_FOUND", fmt.Sprintf("%s with ID %v not found.", resource, id))
}

func NewConflict(message string) error {
	return NewAppError(KindConflict, "CONFLICT", message)
}

func NewUnauthorized(message string) error {
	return NewAppError(KindUnauthorized, "UNAUTHORIZED", message)
}

func NewForbidden(message string) error {
	return NewAppError(KindForbidden, "FORBIDDEN", message)
}

func NewFault(err error) error {
	e := NewAppError(KindFault, "INTERNAL_ERROR", "")
	e.Err = err
	return e
}

// ToAppError converts generic errors to AppError. Fiber routing errors keep their status;
// anything unrecognized becomes a fault.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fromFiber(fiberErr)
	}
	e := NewAppError(KindFault, "INTERNAL_ERROR", "")
	e.Err = err
	return e
}

func fromFiber(err *fiber.Error) *AppError {
	kind := KindFault
	switch {
	case err.Code == http.StatusNotFound:
		kind = KindNotFound
	case err.Code == http.StatusUnauthorized:
		kind = KindUnauthorized
	case err.Code == http.StatusForbidden:
		kind = KindForbidden
	case err.Code >= 400 && err.Code < 500:
		kind = KindValidation
	}
	return &AppError{
		Code:       strings.ToUpper(strings.ReplaceAll(http.StatusText(err.Code), " ", "_")),
		Kind:       kind,
		Message:    err.Message,
		HTTPStatus: err.Code,
		Err:        err,
	}
}
