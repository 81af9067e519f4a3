package errors

import (
	"errors"
	"net/http"
)

// Exception is an error with an HTTP status class attached. Handlers
// map service errors to responses through StatusCode.
type Exception struct {
	Message    string
	StatusCode int
}

func (e *Exception) Error() string {
	return e.Message
}

// New builds a one-off Exception for messages that carry request
// context (e.g. a field name) and have no sentinel.
func New(status int, message string) *Exception {
	return &Exception{Message: message, StatusCode: status}
}

func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
