package errors

import "net/http"

var ErrInvalidStatus = &Exception{
	Message:    "invalid status value or transition",
	StatusCode: http.StatusBadRequest,
}
