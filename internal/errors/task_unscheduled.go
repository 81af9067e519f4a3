package errors

import "net/http"

var ErrTaskUnscheduled = &Exception{
	Message:    "cannot set a start time on an unscheduled task",
	StatusCode: http.StatusBadRequest,
}
