package errors

import "net/http"

var ErrDuplicateCategory = &Exception{
	Message:    "category name already in use",
	StatusCode: http.StatusConflict,
}
