package errors

import "net/http"

var ErrInvalidClock = &Exception{
	Message:    "time must be HH:MM",
	StatusCode: http.StatusBadRequest,
}
