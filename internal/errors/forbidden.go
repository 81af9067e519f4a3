package errors

import "net/http"

var ErrForbidden = &Exception{
	Message:    "no access to this workspace",
	StatusCode: http.StatusForbidden,
}
