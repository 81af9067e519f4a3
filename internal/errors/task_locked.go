package errors

import "net/http"

var ErrTaskLocked = &Exception{
	Message:    "task is locked; reinstate it to planned first",
	StatusCode: http.StatusConflict,
}
