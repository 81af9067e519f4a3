package errors

import "net/http"

var ErrNotTaskOwner = &Exception{
	Message:    "only the task owner can modify it",
	StatusCode: http.StatusForbidden,
}
