package errors

import "net/http"

var ErrTransferMismatch = &Exception{
	Message:    "workspaces must share type and organization",
	StatusCode: http.StatusConflict,
}
