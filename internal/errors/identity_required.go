package errors

import "net/http"

var ErrIdentityRequired = &Exception{
	Message:    "user identity is required",
	StatusCode: http.StatusUnauthorized,
}
