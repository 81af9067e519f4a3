package errors

import "net/http"

var ErrInvalidMinutes = &Exception{
	Message:    "minutes must be between 0 and 1440",
	StatusCode: http.StatusBadRequest,
}
