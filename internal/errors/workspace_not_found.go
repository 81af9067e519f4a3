package errors

import "net/http"

var ErrWorkspaceNotFound = &Exception{
	Message:    "workspace not found",
	StatusCode: http.StatusNotFound,
}
