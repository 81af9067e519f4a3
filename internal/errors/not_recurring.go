package errors

import "net/http"

var ErrNotRecurring = &Exception{
	Message:    "task has no recurrence rule",
	StatusCode: http.StatusBadRequest,
}
