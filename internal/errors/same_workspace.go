package errors

import "net/http"

var ErrSameWorkspace = &Exception{
	Message:    "source and target workspace are the same",
	StatusCode: http.StatusConflict,
}
