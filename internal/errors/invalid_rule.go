package errors

import "net/http"

var ErrInvalidRule = &Exception{
	Message:    "unknown recurrence rule",
	StatusCode: http.StatusBadRequest,
}
