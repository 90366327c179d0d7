package errorutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrorResponse is the body returned on every error path.
type ErrorResponse struct {
	ErrorID         string           `json:"errorId"`
	StatusCode      int              `json:"statusCode"`
	Message         string           `json:"message"`
	Reason          string           `json:"reason,omitempty"`
	Errors          []FieldViolation `json:"errors,omitempty"`
	Timestamp       time.Time        `json:"timestamp"`
	Path            string           `json:"path"`
	DetailedMessage string           `json:"detailedMessage,omitempty"`
	StackTrace      string           `json:"stackTrace,omitempty"`
	ExceptionType   string           `json:"exceptionType,omitempty"`
}

// NewErrorResponse builds the client body for err with a fresh correlation id.
// Faults always carry the generic message of their class.
func NewErrorResponse(err *AppError, path string) ErrorResponse {
	message := err.Message
	if err.IsFault() {
		_, message = Classify(KindFault)
	}
	return ErrorResponse{
		ErrorID:    uuid.NewString(),
		StatusCode: err.HTTPStatus,
		Message:    message,
		Errors:     err.Violations,
		Timestamp:  time.Now().UTC(),
		Path:       path,
	}
}

// WithDetails attaches debugging information for non-production environments.
func (r ErrorResponse) WithDetails(err *AppError, stack string) ErrorResponse {
	cause := error(err)
	if err.Err != nil {
		cause = err.Err
	}
	r.DetailedMessage = cause.Error()
	r.ExceptionType = err.Kind.String()
	if err.IsFault() {
		r.ExceptionType = fmt.Sprintf("%s (%T)", err.Kind, cause)
	}
	if stack == "" {
		stack = fmt.Sprintf("%+v", cause)
	}
	r.StackTrace = stack
	return r
}
