package errors

import "net/http"

var ErrCategoryNotFound = &Exception{
	Message:    "category not found",
	StatusCode: http.StatusNotFound,
}
